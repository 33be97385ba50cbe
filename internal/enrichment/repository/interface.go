package repository

import (
	"context"
	"time"
)

// Brief statuses.
const (
	StatusPending = "pending"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Brief is a generated summary for one opportunity.
type Brief struct {
	OpportunityID int64
	Status        string
	Brief         *string
	Model         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PendingItem is one opportunity awaiting a brief.
type PendingItem struct {
	OpportunityID int64
	NoticeID      string
	Title         string
	BriefStatus   *string
}

// SourceText is the enrichment-relevant content of one opportunity.
type SourceText struct {
	OpportunityID int64
	NoticeID      string
	Title         string
	Agency        string
	Type          string
	SetAside      *string
	Deadline      time.Time
	Description   *string
}

// Repository persists briefs and reads enrichment source content.
type Repository interface {
	// ListPending returns opportunities with no brief or a non-ok brief,
	// newest upserted first.
	ListPending(ctx context.Context, limit int) ([]PendingItem, error)
	GetSourceText(ctx context.Context, oppID int64) (*SourceText, error)
	GetBrief(ctx context.Context, oppID int64) (*Brief, error)
	SaveBrief(ctx context.Context, oppID int64, brief, model string) error
	ResetBrief(ctx context.Context, oppID int64, status string) error
}
