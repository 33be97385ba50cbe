package samclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", MaxRetries: 3})
	c.sleep = func(time.Duration) {}
	return c, srv
}

func TestSearch_ParsesOpportunitiesData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			t.Errorf("api_key = %q, want test-key", q.Get("api_key"))
		}
		if q.Get("ncode") != "541611" {
			t.Errorf("ncode = %q, want 541611", q.Get("ncode"))
		}
		if q.Get("postedFrom") != "01/05/2026" {
			t.Errorf("postedFrom = %q, want 01/05/2026", q.Get("postedFrom"))
		}
		w.Write([]byte(`{"totalRecords":2,"opportunitiesData":[{"noticeId":"a"},{"noticeId":"b"}]}`))
	})

	result, err := c.Search(context.Background(), SearchParams{
		CategoryCode: "541611",
		PostedFrom:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		PostedTo:     time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		Limit:        100,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	if result.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2", result.TotalRecords)
	}
}

func TestSearch_FallsBackToOpportunitiesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalRecords":1,"opportunities":[{"noticeId":"x"}]}`))
	})

	result, err := c.Search(context.Background(), SearchParams{Limit: 100})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0]["noticeId"] != "x" {
		t.Fatalf("unexpected records: %v", result.Records)
	}
}

func TestSearch_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"totalRecords":0,"opportunitiesData":[]}`))
	})

	var waits []time.Duration
	c.sleep = func(d time.Duration) { waits = append(waits, d) }

	if _, err := c.Search(context.Background(), SearchParams{Limit: 100}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Errorf("backoff waits = %v, want [1s 2s]", waits)
	}
}

func TestSearch_HonorsRetryAfterOn429(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"totalRecords":0,"opportunitiesData":[]}`))
	})

	var waits []time.Duration
	c.sleep = func(d time.Duration) { waits = append(waits, d) }

	if _, err := c.Search(context.Background(), SearchParams{Limit: 100}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(waits) != 1 || waits[0] != 7*time.Second {
		t.Errorf("waits = %v, want [7s]", waits)
	}
}

func TestSearch_ExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), SearchParams{Limit: 100})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error %q should mention attempt count", err)
	}
}

func TestSearch_MissingAPIKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.invalid"})
	if _, err := c.Search(context.Background(), SearchParams{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
