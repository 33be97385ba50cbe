package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateNotice is returned by Insert when another writer created the
// same notice_id first.
var ErrDuplicateNotice = errors.New("notice_id already exists")

// Opportunity is the persisted form of a normalized feed record.
type Opportunity struct {
	ID               int64
	NoticeID         string
	Title            string
	Agency           string
	Type             string
	PostedDate       time.Time
	ResponseDeadline time.Time
	CategoryCode     *string
	SetAside         *string
	Description      *string
	SourceURL        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpsertedAt       time.Time
}

// Store is the page-scoped write surface. All calls within one WithPage
// invocation share a transaction.
type Store interface {
	GetByNoticeID(ctx context.Context, noticeID string) (*Opportunity, error)
	Insert(ctx context.Context, opp *Opportunity) error
	Update(ctx context.Context, opp *Opportunity) error
}

// RunTotals are the aggregate counters persisted per ingestion run.
type RunTotals struct {
	Pulled   int
	Inserted int
	Updated  int
	Skipped  int
	Filtered int
	Errors   int
}

// RunRecord is a persisted ingestion run summary.
type RunRecord struct {
	ID         int64
	Source     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Totals     RunTotals
	Breakdown  []byte
}

// Repository persists opportunities and run summaries. WithPage wraps fn in a
// transaction so a page commits or rolls back as a unit.
type Repository interface {
	WithPage(ctx context.Context, fn func(ctx context.Context, store Store) error) error
	CreateRun(ctx context.Context, source string, startedAt time.Time) (int64, error)
	FinishRun(ctx context.Context, runID int64, finishedAt time.Time, totals RunTotals, breakdown any) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
