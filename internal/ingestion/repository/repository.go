package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new ingestion repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// WithPage runs fn inside a transaction. The page commits only if fn returns
// nil; any error rolls back every write fn made.
func (r *Repo) WithPage(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin page transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit page transaction: %w", err)
	}
	return nil
}

// CreateRun inserts an open run row and returns its id.
func (r *Repo) CreateRun(ctx context.Context, source string, startedAt time.Time) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ingestion_runs (source, started_at) VALUES ($1, $2) RETURNING id`,
		source, startedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create ingestion run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run row with its final counters and per-category
// breakdown.
func (r *Repo) FinishRun(ctx context.Context, runID int64, finishedAt time.Time, totals RunTotals, breakdown any) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshal run breakdown: %w", err)
	}

	query := `
		UPDATE ingestion_runs
		SET finished_at = $2,
		    inserted_count = $3,
		    updated_count = $4,
		    skipped_count = $5,
		    filtered_count = $6,
		    error_count = $7,
		    breakdown = $8
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, runID, finishedAt,
		totals.Inserted, totals.Updated, totals.Skipped, totals.Filtered, totals.Errors, raw); err != nil {
		return fmt.Errorf("finish ingestion run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *Repo) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, source, started_at, finished_at,
		       inserted_count, updated_count, skipped_count, filtered_count, error_count,
		       breakdown
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list ingestion runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.StartedAt, &rec.FinishedAt,
			&rec.Totals.Inserted, &rec.Totals.Updated, &rec.Totals.Skipped,
			&rec.Totals.Filtered, &rec.Totals.Errors, &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("scan ingestion run: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// txStore is the transactional Store handed to WithPage callbacks.
type txStore struct {
	tx pgx.Tx
}

var _ Store = (*txStore)(nil)

const opportunityColumns = `
	id, notice_id, title, agency, opportunity_type, posted_date, response_deadline,
	category_code, set_aside, description, source_url, created_at, updated_at, upserted_at`

func (s *txStore) GetByNoticeID(ctx context.Context, noticeID string) (*Opportunity, error) {
	query := `SELECT` + opportunityColumns + `
		FROM opportunities WHERE notice_id = $1`

	var opp Opportunity
	err := s.tx.QueryRow(ctx, query, noticeID).Scan(
		&opp.ID, &opp.NoticeID, &opp.Title, &opp.Agency, &opp.Type,
		&opp.PostedDate, &opp.ResponseDeadline,
		&opp.CategoryCode, &opp.SetAside, &opp.Description, &opp.SourceURL,
		&opp.CreatedAt, &opp.UpdatedAt, &opp.UpsertedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opportunity by notice_id: %w", err)
	}
	return &opp, nil
}

// Insert writes a new opportunity row. A concurrent insert of the same
// notice_id must surface as ErrDuplicateNotice without aborting the page
// transaction, so the conflict is absorbed in the statement itself rather
// than raised as a unique violation.
func (s *txStore) Insert(ctx context.Context, opp *Opportunity) error {
	query := `
		INSERT INTO opportunities
			(notice_id, title, agency, opportunity_type, posted_date, response_deadline,
			 category_code, set_aside, description, source_url, upserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (notice_id) DO NOTHING
		RETURNING id, created_at, updated_at, upserted_at`

	err := s.tx.QueryRow(ctx, query,
		opp.NoticeID, opp.Title, opp.Agency, opp.Type, opp.PostedDate, opp.ResponseDeadline,
		opp.CategoryCode, opp.SetAside, opp.Description, opp.SourceURL,
	).Scan(&opp.ID, &opp.CreatedAt, &opp.UpdatedAt, &opp.UpsertedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicateNotice
		}
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

func (s *txStore) Update(ctx context.Context, opp *Opportunity) error {
	query := `
		UPDATE opportunities
		SET title = $2, agency = $3, opportunity_type = $4, posted_date = $5,
		    response_deadline = $6, category_code = $7, set_aside = $8,
		    description = $9, source_url = $10,
		    updated_at = now(), upserted_at = now()
		WHERE id = $1`

	if _, err := s.tx.Exec(ctx, query,
		opp.ID, opp.Title, opp.Agency, opp.Type, opp.PostedDate, opp.ResponseDeadline,
		opp.CategoryCode, opp.SetAside, opp.Description, opp.SourceURL); err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	return nil
}
