package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements Recorder with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new event log repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Compile-time check that Repository implements Recorder.
var _ Recorder = (*Repository)(nil)

// Append inserts one audit entry. The table is append-only; there is no
// update or delete path.
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	if entry.SchemaVersion == "" {
		entry.SchemaVersion = DefaultSchemaVersion
	}
	payload := entry.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	query := `
		INSERT INTO events (organization_id, user_id, opportunity_id, event_type, schema_version, payload)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.pool.Exec(ctx, query,
		entry.OrganizationID, entry.UserID, entry.OpportunityID,
		entry.EventType, entry.SchemaVersion, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListByOpportunity returns the most recent entries for one opportunity,
// newest first.
func (r *Repository) ListByOpportunity(ctx context.Context, opportunityID int64, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, occurred_at, organization_id, user_id, opportunity_id, event_type, schema_version, payload
		FROM events
		WHERE opportunity_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, opportunityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.OrganizationID, &e.UserID, &e.OpportunityID,
			&e.EventType, &e.SchemaVersion, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
