package service

import (
	"context"
	"time"

	"bidlens_backend/internal/events"
	"bidlens_backend/internal/ingestion/repository"
	"bidlens_backend/internal/ingestion/samclient"
	"bidlens_backend/platform/config"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/metrics"
)

const runSource = "sam.gov"

// FeedClient fetches one page of raw feed records.
type FeedClient interface {
	Search(ctx context.Context, params samclient.SearchParams) (samclient.SearchResult, error)
}

// CategoryResult is the per-category slice of a run summary. Error holds the
// message of a category-level feed failure; record-level failures only bump
// Errors.
type CategoryResult struct {
	CategoryCode string `json:"categoryCode"`
	Pulled       int    `json:"pulled"`
	Inserted     int    `json:"inserted"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	Filtered     int    `json:"filtered"`
	Errors       int    `json:"errors"`
	Error        string `json:"error,omitempty"`
}

// RunSummary is the result of one full ingestion run across all categories.
type RunSummary struct {
	RunID      int64                `json:"runId"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Totals     repository.RunTotals `json:"totals"`
	Categories []CategoryResult     `json:"categories"`
}

// Orchestrator drives ingestion runs: it pulls the feed per category, pages
// through results, and writes each page in its own transaction so one bad
// page never loses the pages before it.
type Orchestrator struct {
	feed     FeedClient
	repo     repository.Repository
	bus      events.Bus
	log      *logger.Logger
	pageSize int
	maxPages int
	now      func() time.Time
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(feed FeedClient, repo repository.Repository, bus events.Bus, cfg config.IngestionConfig, log *logger.Logger) *Orchestrator {
	pageSize := cfg.GetIngestPageSize()
	if pageSize <= 0 {
		pageSize = 100
	}
	maxPages := cfg.GetIngestMaxPages()
	if maxPages <= 0 {
		maxPages = 20
	}

	return &Orchestrator{
		feed:     feed,
		repo:     repo,
		bus:      bus,
		log:      log,
		pageSize: pageSize,
		maxPages: maxPages,
		now:      time.Now,
	}
}

// Run executes one ingestion run over the given category codes. A failing
// category is recorded and skipped; the run itself fails only when the run
// record cannot be written. The summary is persisted and an
// IngestionRunCompleted event is published either way.
func (o *Orchestrator) Run(ctx context.Context, categoryCodes []string, lookbackDays int) (RunSummary, error) {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}

	startedAt := o.now().UTC()
	runID, err := o.repo.CreateRun(ctx, runSource, startedAt)
	if err != nil {
		return RunSummary{}, err
	}

	postedTo := startedAt
	postedFrom := startedAt.AddDate(0, 0, -lookbackDays)

	summary := RunSummary{RunID: runID, StartedAt: startedAt}
	for _, code := range categoryCodes {
		result := o.pullCategory(ctx, code, postedFrom, postedTo)
		summary.Categories = append(summary.Categories, result)

		summary.Totals.Pulled += result.Pulled
		summary.Totals.Inserted += result.Inserted
		summary.Totals.Updated += result.Updated
		summary.Totals.Skipped += result.Skipped
		summary.Totals.Filtered += result.Filtered
		summary.Totals.Errors += result.Errors
	}
	summary.FinishedAt = o.now().UTC()

	if err := o.repo.FinishRun(ctx, runID, summary.FinishedAt, summary.Totals, summary.Categories); err != nil {
		o.log.DatabaseError("finish ingestion run", err)
	}

	o.log.IngestRunSummary(runID, summary.Totals.Inserted, summary.Totals.Updated,
		summary.Totals.Skipped, summary.Totals.Filtered, summary.Totals.Errors)

	o.bus.Publish(ctx, events.IngestionRunCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		Inserted:  summary.Totals.Inserted,
		Updated:   summary.Totals.Updated,
		Skipped:   summary.Totals.Skipped,
		Filtered:  summary.Totals.Filtered,
		Errors:    summary.Totals.Errors,
	})

	return summary, nil
}

// pullCategory pages through one category. Pagination stops at the first
// empty page or at the page cap.
func (o *Orchestrator) pullCategory(ctx context.Context, code string, postedFrom, postedTo time.Time) CategoryResult {
	result := CategoryResult{CategoryCode: code}

	for page := 0; page < o.maxPages; page++ {
		feedPage, err := o.feed.Search(ctx, samclient.SearchParams{
			CategoryCode: code,
			PostedFrom:   postedFrom,
			PostedTo:     postedTo,
			Limit:        o.pageSize,
			Offset:       page * o.pageSize,
		})
		if err != nil {
			result.Errors++
			result.Error = err.Error()
			o.log.RecordError(code, "", err)
			return result
		}
		if len(feedPage.Records) == 0 {
			break
		}
		result.Pulled += len(feedPage.Records)

		err = o.repo.WithPage(ctx, func(ctx context.Context, store repository.Store) error {
			o.ingestPage(ctx, store, code, feedPage.Records, &result)
			return nil
		})
		if err != nil {
			// The page's writes rolled back; its records count as errors.
			result.Errors += len(feedPage.Records)
			result.Error = err.Error()
			o.log.RecordError(code, "", err)
			return result
		}
	}

	return result
}

// ingestPage normalizes and upserts one page of records. Record-level
// failures are counted and logged without aborting the page.
func (o *Orchestrator) ingestPage(ctx context.Context, store repository.Store, code string, records []map[string]any, result *CategoryResult) {
	for _, rec := range records {
		canonical, reason := Normalize(rec, nil)
		if reason != RejectNone {
			result.Filtered++
			metrics.IngestOutcomes.WithLabelValues("filtered").Inc()
			continue
		}

		outcome, err := Upsert(ctx, store, canonical)
		if err != nil {
			result.Errors++
			metrics.IngestOutcomes.WithLabelValues("error").Inc()
			o.log.RecordError(code, canonical.NoticeID, err)
			continue
		}

		switch outcome {
		case OutcomeInserted:
			result.Inserted++
		case OutcomeUpdated:
			result.Updated++
		case OutcomeSkipped:
			result.Skipped++
		}
		metrics.IngestOutcomes.WithLabelValues(string(outcome)).Inc()
	}
}
