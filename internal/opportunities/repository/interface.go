package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Opportunity is the read model for a persisted feed record.
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

// Workspace holds an organization's private annotations on one opportunity.
type Workspace struct {
	InternalDeadline *time.Time
	Notes            *string
	UpdatedAt        time.Time
}

// Repository provides read access to opportunities plus the per-org overlays
// (decision state, caller vote, workspace).
type Repository interface {
	GetByID(ctx context.Context, oppID int64) (*Opportunity, error)
	// ListByTypes returns all opportunities of the given types ordered by
	// response deadline ascending.
	ListByTypes(ctx context.Context, types []string) ([]Opportunity, error)
	// ListByStates returns the organization's opportunities whose decision
	// state is in states, ordered by response deadline ascending.
	ListByStates(ctx context.Context, orgID uuid.UUID, states []string) ([]Opportunity, error)
	// StatesFor maps opportunity id to decision state for rows that exist;
	// absent pairs are simply missing from the map.
	StatesFor(ctx context.Context, orgID uuid.UUID, oppIDs []int64) (map[int64]string, error)
	// VotesFor maps opportunity id to the caller's current non-null vote.
	VotesFor(ctx context.Context, orgID, userID uuid.UUID, oppIDs []int64) (map[int64]string, error)
	// GetWorkspace returns nil without error when no workspace row exists.
	GetWorkspace(ctx context.Context, orgID uuid.UUID, oppID int64) (*Workspace, error)
	UpsertWorkspace(ctx context.Context, orgID uuid.UUID, oppID int64, internalDeadline *time.Time, notes *string) error
	// WorkspacesFor maps opportunity id to workspace for rows that exist.
	WorkspacesFor(ctx context.Context, orgID uuid.UUID, oppIDs []int64) (map[int64]Workspace, error)
}
