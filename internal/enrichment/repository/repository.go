package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bidlens_backend/platform/apperr"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new enrichment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListPending returns opportunities with no brief or a non-ok brief.
func (r *Repo) ListPending(ctx context.Context, limit int) ([]PendingItem, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT o.id, o.notice_id, o.title, b.status
		FROM opportunities o
		LEFT JOIN opportunity_briefs b ON b.opportunity_id = o.id
		WHERE b.opportunity_id IS NULL OR b.status <> $1
		ORDER BY o.upserted_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, StatusOK, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending briefs: %w", err)
	}
	defer rows.Close()

	var items []PendingItem
	for rows.Next() {
		var item PendingItem
		if err := rows.Scan(&item.OpportunityID, &item.NoticeID, &item.Title, &item.BriefStatus); err != nil {
			return nil, fmt.Errorf("scan pending brief: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetSourceText reads the enrichment-relevant fields of one opportunity.
func (r *Repo) GetSourceText(ctx context.Context, oppID int64) (*SourceText, error) {
	query := `
		SELECT id, notice_id, title, agency, opportunity_type, set_aside, response_deadline, description
		FROM opportunities
		WHERE id = $1`

	var src SourceText
	err := r.pool.QueryRow(ctx, query, oppID).Scan(
		&src.OpportunityID, &src.NoticeID, &src.Title, &src.Agency,
		&src.Type, &src.SetAside, &src.Deadline, &src.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("opportunity not found")
		}
		return nil, fmt.Errorf("get enrichment source: %w", err)
	}
	return &src, nil
}

// GetBrief returns the brief row, or NotFound.
func (r *Repo) GetBrief(ctx context.Context, oppID int64) (*Brief, error) {
	query := `
		SELECT opportunity_id, status, brief, model, created_at, updated_at
		FROM opportunity_briefs
		WHERE opportunity_id = $1`

	var b Brief
	err := r.pool.QueryRow(ctx, query, oppID).Scan(
		&b.OpportunityID, &b.Status, &b.Brief, &b.Model, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("brief not found")
		}
		return nil, fmt.Errorf("get brief: %w", err)
	}
	return &b, nil
}

// SaveBrief stores a generated brief and marks it ok.
func (r *Repo) SaveBrief(ctx context.Context, oppID int64, brief, model string) error {
	query := `
		INSERT INTO opportunity_briefs (opportunity_id, status, brief, model, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (opportunity_id)
		DO UPDATE SET status = EXCLUDED.status, brief = EXCLUDED.brief,
		              model = EXCLUDED.model, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, oppID, StatusOK, brief, model); err != nil {
		return fmt.Errorf("save brief: %w", err)
	}
	return nil
}

// ResetBrief moves a brief back to pending or failed, clearing its body.
func (r *Repo) ResetBrief(ctx context.Context, oppID int64, status string) error {
	query := `
		INSERT INTO opportunity_briefs (opportunity_id, status, brief, model, updated_at)
		VALUES ($1, $2, NULL, NULL, now())
		ON CONFLICT (opportunity_id)
		DO UPDATE SET status = EXCLUDED.status, brief = NULL, model = NULL, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, oppID, status); err != nil {
		return fmt.Errorf("reset brief: %w", err)
	}
	return nil
}
