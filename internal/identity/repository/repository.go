package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bidlens_backend/platform/apperr"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetOrganization retrieves one organization by id.
func (r *Repo) GetOrganization(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_active, created_at FROM organizations WHERE id = $1`, orgID,
	).Scan(&org.ID, &org.Name, &org.IsActive, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("organization not found")
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// GetUser retrieves one user by id.
func (r *Repo) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, organization_id, created_at FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.OrganizationID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetProfile returns the organization's profile, or nil when none was saved.
func (r *Repo) GetProfile(ctx context.Context, orgID uuid.UUID) (*Profile, error) {
	query := `
		SELECT organization_id, include_keywords, exclude_keywords,
		       include_agencies, exclude_agencies, min_days_out, max_days_out,
		       category_codes, lookback_days, digest_max_items,
		       digest_recipients, digest_time_local, updated_at
		FROM org_profiles
		WHERE organization_id = $1`

	var p Profile
	err := r.pool.QueryRow(ctx, query, orgID).Scan(
		&p.OrganizationID, &p.IncludeKeywords, &p.ExcludeKeywords,
		&p.IncludeAgencies, &p.ExcludeAgencies, &p.MinDaysOut, &p.MaxDaysOut,
		&p.CategoryCodes, &p.LookbackDays, &p.DigestMaxItems,
		&p.DigestRecipients, &p.DigestTimeLocal, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get org profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile writes the full profile row for the organization.
func (r *Repo) UpsertProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO org_profiles
			(organization_id, include_keywords, exclude_keywords,
			 include_agencies, exclude_agencies, min_days_out, max_days_out,
			 category_codes, lookback_days, digest_max_items,
			 digest_recipients, digest_time_local, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (organization_id)
		DO UPDATE SET
			include_keywords = EXCLUDED.include_keywords,
			exclude_keywords = EXCLUDED.exclude_keywords,
			include_agencies = EXCLUDED.include_agencies,
			exclude_agencies = EXCLUDED.exclude_agencies,
			min_days_out = EXCLUDED.min_days_out,
			max_days_out = EXCLUDED.max_days_out,
			category_codes = EXCLUDED.category_codes,
			lookback_days = EXCLUDED.lookback_days,
			digest_max_items = EXCLUDED.digest_max_items,
			digest_recipients = EXCLUDED.digest_recipients,
			digest_time_local = EXCLUDED.digest_time_local,
			updated_at = now()`

	if _, err := r.pool.Exec(ctx, query,
		p.OrganizationID, p.IncludeKeywords, p.ExcludeKeywords,
		p.IncludeAgencies, p.ExcludeAgencies, p.MinDaysOut, p.MaxDaysOut,
		p.CategoryCodes, p.LookbackDays, p.DigestMaxItems,
		p.DigestRecipients, p.DigestTimeLocal); err != nil {
		return fmt.Errorf("upsert org profile: %w", err)
	}
	return nil
}
