package service

import (
	"context"

	"github.com/google/uuid"

	"bidlens_backend/internal/identity/repository"
	"bidlens_backend/platform/apperr"
	"bidlens_backend/platform/logger"
)

// Service provides tenancy checks and organization profile management.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new identity service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// RequireActiveOrganization verifies the organization exists and is active.
func (s *Service) RequireActiveOrganization(ctx context.Context, orgID uuid.UUID) error {
	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	if !org.IsActive {
		return apperr.Forbidden("organization is not active")
	}
	return nil
}

// GetProfile returns the organization's profile, falling back to an empty
// profile with defaults when none was ever saved.
func (s *Service) GetProfile(ctx context.Context, orgID uuid.UUID) (*repository.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &repository.Profile{OrganizationID: orgID, DigestMaxItems: 20}, nil
	}
	return profile, nil
}

// UpdateProfile validates and persists the organization's profile.
func (s *Service) UpdateProfile(ctx context.Context, profile *repository.Profile) (*repository.Profile, error) {
	if profile.MinDaysOut != nil && profile.MaxDaysOut != nil && *profile.MinDaysOut > *profile.MaxDaysOut {
		return nil, apperr.Validation("min days out cannot exceed max days out")
	}
	if profile.LookbackDays != nil && (*profile.LookbackDays < 1 || *profile.LookbackDays > 90) {
		return nil, apperr.Validation("lookback days must be between 1 and 90")
	}
	if profile.DigestMaxItems <= 0 {
		profile.DigestMaxItems = 20
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profile.OrganizationID)
}
