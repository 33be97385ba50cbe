// Package samclient provides a client for the SAM.gov opportunities search
// API. Retries with exponential backoff are handled here; callers see either
// a page of raw records or an error after the retry budget is exhausted.
package samclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const backoffCap = 30 * time.Second

// Config configures the SAM.gov client.
type Config struct {
	BaseURL    string
	APIKey     string
	MaxRetries int
	Timeout    time.Duration
}

// Client is an HTTP client for the SAM.gov opportunities API.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewClient creates a new SAM.gov client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 5
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

// SearchParams identify one page of the feed for one category code.
type SearchParams struct {
	CategoryCode string
	PostedFrom   time.Time
	PostedTo     time.Time
	Limit        int
	Offset       int
}

// SearchResult is one page of raw feed records. The upstream schema is
// inconsistent, so records stay untyped until normalization.
type SearchResult struct {
	Records      []map[string]any
	TotalRecords int
}

// searchResponse covers the two envelope shapes the API has been seen to use.
type searchResponse struct {
	TotalRecords      int              `json:"totalRecords"`
	OpportunitiesData []map[string]any `json:"opportunitiesData"`
	Opportunities     []map[string]any `json:"opportunities"`
}

// Search fetches one page, retrying transient failures with exponential
// backoff and honoring Retry-After on 429 responses. It returns an error only
// after the retry budget is exhausted.
func (c *Client) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	if c.apiKey == "" {
		return SearchResult{}, fmt.Errorf("SAM API key is not configured")
	}

	reqURL := c.buildURL(params)

	backoff := time.Second
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return SearchResult{}, ctx.Err()
		}

		result, retryAfter, err := c.doSearch(ctx, reqURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		c.sleep(wait)
		backoff = min(backoff*2, backoffCap)
	}

	return SearchResult{}, fmt.Errorf("SAM request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// doSearch performs one attempt. A non-zero retryAfter overrides the caller's
// backoff for the next wait.
func (c *Client) doSearch(ctx context.Context, reqURL string) (SearchResult, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return SearchResult{}, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if raw := resp.Header.Get("Retry-After"); raw != "" {
			if secs, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				retryAfter = time.Duration(secs * float64(time.Second))
			}
		}
		return SearchResult{}, retryAfter, fmt.Errorf("rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 800))
		return SearchResult{}, 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchResult{}, 0, fmt.Errorf("decode response: %w", err)
	}

	records := payload.OpportunitiesData
	if records == nil {
		records = payload.Opportunities
	}

	return SearchResult{Records: records, TotalRecords: payload.TotalRecords}, 0, nil
}

func (c *Client) buildURL(params SearchParams) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("postedFrom", params.PostedFrom.Format("01/02/2006"))
	q.Set("postedTo", params.PostedTo.Format("01/02/2006"))
	q.Set("ncode", params.CategoryCode)
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("offset", strconv.Itoa(params.Offset))
	return c.baseURL + "?" + q.Encode()
}
