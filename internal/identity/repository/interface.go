package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant. Decision state and votes are scoped to it.
type Organization struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// User is a member of an organization.
type User struct {
	ID             uuid.UUID
	Email          string
	OrganizationID *uuid.UUID
	CreatedAt      time.Time
}

// Profile holds an organization's feed-filter preferences and ingestion
// defaults. All filter fields are optional; a nil field filters nothing.
type Profile struct {
	OrganizationID   uuid.UUID
	IncludeKeywords  *string
	ExcludeKeywords  *string
	IncludeAgencies  *string
	ExcludeAgencies  *string
	MinDaysOut       *int
	MaxDaysOut       *int
	CategoryCodes    *string
	LookbackDays     *int
	DigestMaxItems   int
	DigestRecipients *string
	DigestTimeLocal  *string
	UpdatedAt        time.Time
}

// Repository provides tenancy and profile persistence.
type Repository interface {
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*Organization, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*User, error)
	// GetProfile returns nil without error when no profile row exists yet.
	GetProfile(ctx context.Context, orgID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
}
