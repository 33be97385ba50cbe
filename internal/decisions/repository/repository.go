package repository

import (
	"context"
	"errors"
	"fmt"

	"bidlens_backend/internal/decisions/statemachine"
	"bidlens_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new decisions repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Transition serializes state changes for the (org, opp) pair: the current
// row is read FOR UPDATE, decide runs against that value, and the write
// commits in the same transaction. When no row exists yet there is nothing
// to lock, so the upsert is guarded on the observed state; a concurrent
// first writer makes the guard match zero rows and the transition conflicts
// instead of overwriting.
func (r *Repo) Transition(ctx context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID,
	decide func(current statemachine.State) (statemachine.State, error)) (statemachine.State, statemachine.State, error) {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", "", fmt.Errorf("begin state transition: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := `
		SELECT state
		FROM opportunity_states
		WHERE organization_id = $1 AND opportunity_id = $2
		FOR UPDATE`

	from := statemachine.StateFeed
	var raw string
	switch err := tx.QueryRow(ctx, lockQuery, orgID, oppID).Scan(&raw); {
	case errors.Is(err, pgx.ErrNoRows):
		// No row yet; FEED by definition.
	case err != nil:
		return "", "", fmt.Errorf("lock decision state: %w", err)
	default:
		if from, err = statemachine.Parse(raw); err != nil {
			return "", "", err
		}
	}

	to, err := decide(from)
	if err != nil {
		return "", "", err
	}

	writeQuery := `
		INSERT INTO opportunity_states (organization_id, opportunity_id, state, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT ON CONSTRAINT uq_opportunity_state
		DO UPDATE SET state = EXCLUDED.state, updated_by = EXCLUDED.updated_by, updated_at = now()
		WHERE opportunity_states.state = $5`

	tag, err := tx.Exec(ctx, writeQuery, orgID, oppID, string(to), userID, string(from))
	if err != nil {
		return "", "", fmt.Errorf("upsert decision state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", "", apperr.Conflict("decision state changed concurrently")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", fmt.Errorf("commit state transition: %w", err)
	}
	return from, to, nil
}

// UpsertVote overwrites the single row for (org, opp, user). A nil vote keeps
// the row with a NULL value, which is distinguishable from "never voted".
func (r *Repo) UpsertVote(ctx context.Context, orgID uuid.UUID, oppID int64, userID uuid.UUID, vote *string) error {
	query := `
		INSERT INTO votes (organization_id, opportunity_id, user_id, vote, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT ON CONSTRAINT uq_vote
		DO UPDATE SET vote = EXCLUDED.vote, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, orgID, oppID, userID, vote); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

// GetTally counts votes per value for the (org, opp) pair. Cleared votes
// (NULL) contribute to no bucket.
func (r *Repo) GetTally(ctx context.Context, orgID uuid.UUID, oppID int64) (Tally, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE vote = 'UP'),
			COUNT(*) FILTER (WHERE vote = 'DOWN'),
			COUNT(*) FILTER (WHERE vote = 'PASS')
		FROM votes
		WHERE organization_id = $1 AND opportunity_id = $2`

	var t Tally
	if err := r.pool.QueryRow(ctx, query, orgID, oppID).Scan(&t.Up, &t.Down, &t.Pass); err != nil {
		return Tally{}, fmt.Errorf("get vote tally: %w", err)
	}
	return t, nil
}

// OpportunityExists reports whether the opportunity row exists.
func (r *Repo) OpportunityExists(ctx context.Context, oppID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM opportunities WHERE id = $1)`, oppID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check opportunity exists: %w", err)
	}
	return exists, nil
}
