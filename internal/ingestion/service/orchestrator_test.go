package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bidlens_backend/internal/events"
	"bidlens_backend/internal/ingestion/repository"
	"bidlens_backend/internal/ingestion/samclient"
	"bidlens_backend/platform/logger"
)

// fakeFeed serves scripted pages per category. Pages are consumed in order;
// a nil page entry yields an error.
type fakeFeed struct {
	pages map[string][][]map[string]any
	calls map[string]int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		pages: make(map[string][][]map[string]any),
		calls: make(map[string]int),
	}
}

func (f *fakeFeed) Search(_ context.Context, params samclient.SearchParams) (samclient.SearchResult, error) {
	call := f.calls[params.CategoryCode]
	f.calls[params.CategoryCode]++

	script := f.pages[params.CategoryCode]
	if call >= len(script) {
		return samclient.SearchResult{}, nil
	}
	page := script[call]
	if page == nil {
		return samclient.SearchResult{}, errors.New("feed unavailable")
	}
	return samclient.SearchResult{Records: page, TotalRecords: len(page)}, nil
}

// fakeRunRepo is an in-memory Repository. WithPage has no real transaction;
// the orchestrator tests only care about write outcomes and run records.
type fakeRunRepo struct {
	store     *fakeStore
	runs      map[int64]*repository.RunRecord
	nextRunID int64
	finished  map[int64]repository.RunTotals
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		store:    newFakeStore(),
		runs:     make(map[int64]*repository.RunRecord),
		finished: make(map[int64]repository.RunTotals),
	}
}

func (r *fakeRunRepo) WithPage(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	return fn(ctx, r.store)
}

func (r *fakeRunRepo) CreateRun(_ context.Context, source string, startedAt time.Time) (int64, error) {
	r.nextRunID++
	r.runs[r.nextRunID] = &repository.RunRecord{ID: r.nextRunID, Source: source, StartedAt: startedAt}
	return r.nextRunID, nil
}

func (r *fakeRunRepo) FinishRun(_ context.Context, runID int64, finishedAt time.Time, totals repository.RunTotals, _ any) error {
	r.runs[runID].FinishedAt = &finishedAt
	r.runs[runID].Totals = totals
	r.finished[runID] = totals
	return nil
}

func (r *fakeRunRepo) ListRuns(context.Context, int) ([]repository.RunRecord, error) {
	return nil, nil
}

// fakeBus records published events synchronously.
type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *fakeBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

type fixedIngestConfig struct {
	pageSize int
	maxPages int
}

func (c fixedIngestConfig) GetDefaultCategoryCodes() []string { return []string{"541611"} }
func (c fixedIngestConfig) GetDefaultLookbackDays() int       { return 7 }
func (c fixedIngestConfig) GetIngestPageSize() int            { return c.pageSize }
func (c fixedIngestConfig) GetIngestMaxPages() int            { return c.maxPages }

func feedRecord(i int) map[string]any {
	return map[string]any{
		"noticeId":         fmt.Sprintf("SAM-%03d", i),
		"title":            fmt.Sprintf("Opportunity %d", i),
		"department":       "GSA",
		"type":             "Solicitation",
		"postedDate":       "2026-01-05",
		"responseDeadLine": "2026-02-01",
		"uiLink":           fmt.Sprintf("https://sam.gov/opp/SAM-%03d/view", i),
	}
}

func newTestOrchestrator(feed FeedClient, repo repository.Repository, bus events.Bus, pageSize, maxPages int) *Orchestrator {
	o := NewOrchestrator(feed, repo, bus, fixedIngestConfig{pageSize: pageSize, maxPages: maxPages}, logger.New("test"))
	o.now = func() time.Time { return time.Date(2026, 1, 12, 6, 0, 0, 0, time.UTC) }
	return o
}

func TestRun_FullPageWithFilteredRecords(t *testing.T) {
	// 100 records: 97 valid, 3 with a disallowed type. A second, empty page
	// stops pagination.
	page := make([]map[string]any, 0, 100)
	for i := 0; i < 97; i++ {
		page = append(page, feedRecord(i))
	}
	for i := 97; i < 100; i++ {
		rec := feedRecord(i)
		rec["type"] = "Award Notice"
		page = append(page, rec)
	}

	feed := newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{page, {}}
	repo := newFakeRunRepo()
	bus := &fakeBus{}

	summary, err := newTestOrchestrator(feed, repo, bus, 100, 20).Run(context.Background(), []string{"541611"}, 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Totals.Inserted != 97 {
		t.Errorf("Inserted = %d, want 97", summary.Totals.Inserted)
	}
	if summary.Totals.Filtered != 3 {
		t.Errorf("Filtered = %d, want 3", summary.Totals.Filtered)
	}
	if summary.Totals.Errors != 0 {
		t.Errorf("Errors = %d, want 0", summary.Totals.Errors)
	}
	if feed.calls["541611"] != 2 {
		t.Errorf("feed calls = %d, want 2 (full page then empty page)", feed.calls["541611"])
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	completed, ok := bus.published[0].(events.IngestionRunCompleted)
	if !ok {
		t.Fatalf("published event is %T, want IngestionRunCompleted", bus.published[0])
	}
	if completed.RunID != summary.RunID || completed.Inserted != 97 || completed.Filtered != 3 {
		t.Errorf("event = %+v does not match summary", completed)
	}

	if _, ok := repo.finished[summary.RunID]; !ok {
		t.Error("run record was never finished")
	}
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	page := []map[string]any{feedRecord(1), feedRecord(2)}

	repo := newFakeRunRepo()
	bus := &fakeBus{}

	feed := newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{page}
	first, err := newTestOrchestrator(feed, repo, bus, 100, 20).Run(context.Background(), []string{"541611"}, 7)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Totals.Inserted != 2 {
		t.Fatalf("first run Inserted = %d, want 2", first.Totals.Inserted)
	}
	firstUpserted := repo.store.rows["SAM-001"].UpsertedAt

	repo.store.now = repo.store.now.Add(time.Hour)
	feed = newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{page}
	second, err := newTestOrchestrator(feed, repo, bus, 100, 20).Run(context.Background(), []string{"541611"}, 7)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Totals.Inserted != 0 || second.Totals.Skipped != 2 {
		t.Errorf("second run totals = %+v, want 2 skipped", second.Totals)
	}
	if !repo.store.rows["SAM-001"].UpsertedAt.Equal(firstUpserted) {
		t.Error("upserted_at moved on idempotent re-run")
	}
}

func TestRun_CategoryFailureIsIsolated(t *testing.T) {
	feed := newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{nil} // feed error
	feed.pages["541690"] = [][]map[string]any{{feedRecord(1)}}
	repo := newFakeRunRepo()
	bus := &fakeBus{}

	summary, err := newTestOrchestrator(feed, repo, bus, 100, 20).Run(context.Background(), []string{"541611", "541690"}, 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Categories) != 2 {
		t.Fatalf("got %d category results, want 2", len(summary.Categories))
	}
	failed := summary.Categories[0]
	if failed.Error == "" || failed.Errors != 1 {
		t.Errorf("failed category = %+v, want recorded error", failed)
	}
	healthy := summary.Categories[1]
	if healthy.Inserted != 1 || healthy.Error != "" {
		t.Errorf("healthy category = %+v, want 1 inserted", healthy)
	}
}

func TestRun_StopsAtPageCap(t *testing.T) {
	// Every page is full, so only the cap stops pagination.
	full := make([]map[string]any, 2)
	for i := range full {
		full[i] = feedRecord(i)
	}
	feed := newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{full, full, full, full, full}
	repo := newFakeRunRepo()
	bus := &fakeBus{}

	if _, err := newTestOrchestrator(feed, repo, bus, 2, 3).Run(context.Background(), []string{"541611"}, 7); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if feed.calls["541611"] != 3 {
		t.Errorf("feed calls = %d, want page cap of 3", feed.calls["541611"])
	}
}

func TestRun_PaginatesPastShortPage(t *testing.T) {
	// A short page mid-stream must not end pagination; only an empty page
	// (or the page cap) does.
	feed := newFakeFeed()
	feed.pages["541611"] = [][]map[string]any{
		{feedRecord(1)},
		{feedRecord(2), feedRecord(3)},
	}
	repo := newFakeRunRepo()
	bus := &fakeBus{}

	summary, err := newTestOrchestrator(feed, repo, bus, 2, 20).Run(context.Background(), []string{"541611"}, 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if feed.calls["541611"] != 3 {
		t.Errorf("feed calls = %d, want 3 (short, full, empty)", feed.calls["541611"])
	}
	if summary.Totals.Inserted != 3 {
		t.Errorf("inserted = %d, want all 3 records across both pages", summary.Totals.Inserted)
	}
}
