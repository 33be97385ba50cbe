// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"bidlens_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Decision Domain Events
// =============================================================================

// DecisionStateChanged is published after a decision state transition commits.
type DecisionStateChanged struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
	OpportunityID  int64     `json:"opportunityId"`
	FromState      string    `json:"fromState"`
	ToState        string    `json:"toState"`
}

func (e DecisionStateChanged) EventName() string { return "decisions.state.changed" }

// VoteCast is published after a vote write, including vote clears.
type VoteCast struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
	OpportunityID  int64     `json:"opportunityId"`
	Vote           *string   `json:"vote"`
}

func (e VoteCast) EventName() string { return "decisions.vote.cast" }

// =============================================================================
// Ingestion Domain Events
// =============================================================================

// IngestionRunCompleted is published when an ingestion run finishes,
// successfully or not.
type IngestionRunCompleted struct {
	BaseEvent
	RunID    int64 `json:"runId"`
	Inserted int   `json:"inserted"`
	Updated  int   `json:"updated"`
	Skipped  int   `json:"skipped"`
	Filtered int   `json:"filtered"`
	Errors   int   `json:"errors"`
}

func (e IngestionRunCompleted) EventName() string { return "ingestion.run.completed" }
