package repository

import (
	"context"
	"time"

	"bidlens_backend/internal/decisions/statemachine"

	"github.com/google/uuid"
)

// DecisionState is the persisted state row for an (organization, opportunity)
// pair. Absence of a row is equivalent to statemachine.StateFeed.
type DecisionState struct {
	OrganizationID uuid.UUID
	OpportunityID  int64
	State          statemachine.State
	UpdatedBy      *uuid.UUID
	UpdatedAt      time.Time
}

// Tally holds raw per-value vote counts for one opportunity within an
// organization. Consumers decide how to combine PASS and DOWN.
type Tally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
	Pass int `json:"pass"`
}

// Repository is the persistence port for decision state and votes.
type Repository interface {
	// Transition reads the current state under a row lock, applies decide to
	// it, and persists the result in the same transaction, so two concurrent
	// writers serialize and each validates against what the other committed.
	// A missing row reads as FEED; decide returning an error aborts without
	// writing.
	Transition(ctx context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID,
		decide func(current statemachine.State) (statemachine.State, error)) (from, to statemachine.State, err error)

	// UpsertVote writes the user's current vote, creating the row if absent.
	// A nil vote clears the value but keeps the row.
	UpsertVote(ctx context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID, vote *string) error

	// GetTally groups vote rows for the (org, opp) pair into per-value counts.
	GetTally(ctx context.Context, orgID uuid.UUID, oppID int64) (Tally, error)

	// OpportunityExists reports whether the opportunity is known.
	OpportunityExists(ctx context.Context, oppID int64) (bool, error)
}
