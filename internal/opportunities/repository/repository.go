package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bidlens_backend/platform/apperr"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new opportunities repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const opportunityColumns = `
	id, notice_id, title, agency, opportunity_type, posted_date, response_deadline,
	category_code, set_aside, description, source_url, created_at, updated_at, upserted_at`

func scanOpportunity(row pgx.Row) (*Opportunity, error) {
	var opp Opportunity
	err := row.Scan(
		&opp.ID, &opp.NoticeID, &opp.Title, &opp.Agency, &opp.Type,
		&opp.PostedDate, &opp.ResponseDeadline,
		&opp.CategoryCode, &opp.SetAside, &opp.Description, &opp.SourceURL,
		&opp.CreatedAt, &opp.UpdatedAt, &opp.UpsertedAt,
	)
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

// GetByID retrieves one opportunity.
func (r *Repo) GetByID(ctx context.Context, oppID int64) (*Opportunity, error) {
	query := `SELECT` + opportunityColumns + ` FROM opportunities WHERE id = $1`

	opp, err := scanOpportunity(r.pool.QueryRow(ctx, query, oppID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("opportunity not found")
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return opp, nil
}

// ListByTypes returns opportunities of the given types, soonest deadline first.
func (r *Repo) ListByTypes(ctx context.Context, types []string) ([]Opportunity, error) {
	query := `SELECT` + opportunityColumns + `
		FROM opportunities
		WHERE opportunity_type = ANY($1)
		ORDER BY response_deadline ASC`

	rows, err := r.pool.Query(ctx, query, types)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by type: %w", err)
	}
	defer rows.Close()

	return collectOpportunities(rows)
}

// ListByStates returns the organization's opportunities in the given decision
// states, soonest deadline first.
func (r *Repo) ListByStates(ctx context.Context, orgID uuid.UUID, states []string) ([]Opportunity, error) {
	query := `SELECT` + prefixColumns("o") + `
		FROM opportunities o
		JOIN opportunity_states s ON s.opportunity_id = o.id
		WHERE s.organization_id = $1 AND s.state = ANY($2)
		ORDER BY o.response_deadline ASC`

	rows, err := r.pool.Query(ctx, query, orgID, states)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by state: %w", err)
	}
	defer rows.Close()

	return collectOpportunities(rows)
}

// StatesFor maps opportunity id to the organization's decision state.
func (r *Repo) StatesFor(ctx context.Context, orgID uuid.UUID, oppIDs []int64) (map[int64]string, error) {
	if len(oppIDs) == 0 {
		return map[int64]string{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT opportunity_id, state FROM opportunity_states
		 WHERE organization_id = $1 AND opportunity_id = ANY($2)`, orgID, oppIDs)
	if err != nil {
		return nil, fmt.Errorf("load decision states: %w", err)
	}
	defer rows.Close()

	states := make(map[int64]string)
	for rows.Next() {
		var id int64
		var state string
		if err := rows.Scan(&id, &state); err != nil {
			return nil, fmt.Errorf("scan decision state: %w", err)
		}
		states[id] = state
	}
	return states, rows.Err()
}

// VotesFor maps opportunity id to the caller's current non-null vote.
func (r *Repo) VotesFor(ctx context.Context, orgID, userID uuid.UUID, oppIDs []int64) (map[int64]string, error) {
	if len(oppIDs) == 0 {
		return map[int64]string{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT opportunity_id, vote FROM votes
		 WHERE organization_id = $1 AND user_id = $2
		   AND opportunity_id = ANY($3) AND vote IS NOT NULL`, orgID, userID, oppIDs)
	if err != nil {
		return nil, fmt.Errorf("load caller votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[int64]string)
	for rows.Next() {
		var id int64
		var vote string
		if err := rows.Scan(&id, &vote); err != nil {
			return nil, fmt.Errorf("scan caller vote: %w", err)
		}
		votes[id] = vote
	}
	return votes, rows.Err()
}

// GetWorkspace returns the org's annotations for one opportunity, or nil.
func (r *Repo) GetWorkspace(ctx context.Context, orgID uuid.UUID, oppID int64) (*Workspace, error) {
	var ws Workspace
	err := r.pool.QueryRow(ctx,
		`SELECT internal_deadline, notes, updated_at FROM opportunity_workspace
		 WHERE organization_id = $1 AND opportunity_id = $2`, orgID, oppID,
	).Scan(&ws.InternalDeadline, &ws.Notes, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &ws, nil
}

// UpsertWorkspace overwrites the org's annotations for one opportunity.
func (r *Repo) UpsertWorkspace(ctx context.Context, orgID uuid.UUID, oppID int64, internalDeadline *time.Time, notes *string) error {
	query := `
		INSERT INTO opportunity_workspace (organization_id, opportunity_id, internal_deadline, notes, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT ON CONSTRAINT uq_opportunity_workspace
		DO UPDATE SET internal_deadline = EXCLUDED.internal_deadline, notes = EXCLUDED.notes, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, orgID, oppID, internalDeadline, notes); err != nil {
		return fmt.Errorf("upsert workspace: %w", err)
	}
	return nil
}

// WorkspacesFor maps opportunity id to the org's annotations.
func (r *Repo) WorkspacesFor(ctx context.Context, orgID uuid.UUID, oppIDs []int64) (map[int64]Workspace, error) {
	if len(oppIDs) == 0 {
		return map[int64]Workspace{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT opportunity_id, internal_deadline, notes, updated_at FROM opportunity_workspace
		 WHERE organization_id = $1 AND opportunity_id = ANY($2)`, orgID, oppIDs)
	if err != nil {
		return nil, fmt.Errorf("load workspaces: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]Workspace)
	for rows.Next() {
		var id int64
		var ws Workspace
		if err := rows.Scan(&id, &ws.InternalDeadline, &ws.Notes, &ws.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		out[id] = ws
	}
	return out, rows.Err()
}

func collectOpportunities(rows pgx.Rows) ([]Opportunity, error) {
	var opps []Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, *opp)
	}
	return opps, rows.Err()
}

func prefixColumns(alias string) string {
	return `
	` + alias + `.id, ` + alias + `.notice_id, ` + alias + `.title, ` + alias + `.agency, ` + alias + `.opportunity_type,
	` + alias + `.posted_date, ` + alias + `.response_deadline, ` + alias + `.category_code, ` + alias + `.set_aside,
	` + alias + `.description, ` + alias + `.source_url, ` + alias + `.created_at, ` + alias + `.updated_at, ` + alias + `.upserted_at`
}
