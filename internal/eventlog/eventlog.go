// Package eventlog persists the append-only audit record of state changes
// and votes. Entries are never updated or deleted.
package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event type tags used across the application.
const (
	TypeStateChanged = "state_changed"
	TypeVoteCast     = "vote_cast"
)

// DefaultSchemaVersion is used when the caller does not identify its schema.
const DefaultSchemaVersion = "v1"

// Entry is one immutable audit record.
type Entry struct {
	ID             int64          `json:"id"`
	OccurredAt     time.Time      `json:"occurredAt"`
	OrganizationID *uuid.UUID     `json:"organizationId,omitempty"`
	UserID         *uuid.UUID     `json:"userId,omitempty"`
	OpportunityID  *int64         `json:"opportunityId,omitempty"`
	EventType      string         `json:"eventType"`
	SchemaVersion  string         `json:"schemaVersion"`
	Payload        map[string]any `json:"payload"`
}

// Recorder appends audit entries. Services depend on this interface so tests
// can capture entries in memory.
type Recorder interface {
	Append(ctx context.Context, entry Entry) error
}
