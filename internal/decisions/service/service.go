package service

import (
	"context"
	"fmt"
	"strings"

	"bidlens_backend/internal/decisions/repository"
	"bidlens_backend/internal/decisions/statemachine"
	"bidlens_backend/internal/eventlog"
	"bidlens_backend/internal/events"
	"bidlens_backend/platform/apperr"
	"bidlens_backend/platform/logger"

	"github.com/google/uuid"
)

const opportunityNotFoundMessage = "opportunity not found"

// Vote values as stored. User-facing input is normalized to UP/DOWN (or nil
// for a clear); PASS remains a readable legacy value in tallies.
const (
	VoteUp   = "UP"
	VoteDown = "DOWN"
)

// Service coordinates decision state transitions and votes: it reads current
// state, validates against the state machine, persists, and appends audit
// events.
type Service struct {
	repo     repository.Repository
	recorder eventlog.Recorder
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new decisions service.
func New(repo repository.Repository, recorder eventlog.Recorder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, bus: bus, log: log}
}

// Transition validates and applies a decision state change for the
// (organization, opportunity) pair, recording the acting user and appending a
// state_changed audit event. Invalid transitions surface as validation errors
// and are never retried.
func (s *Service) Transition(ctx context.Context, orgID, userID uuid.UUID, oppID int64, target string, schemaVersion string) (statemachine.State, error) {
	toState, err := statemachine.Parse(target)
	if err != nil {
		return "", err
	}

	exists, err := s.repo.OpportunityExists(ctx, oppID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperr.NotFound(opportunityNotFoundMessage)
	}

	// Validation runs inside the repository's transition lock so it always
	// sees the state a concurrent writer just committed, never a stale read.
	fromState, _, err := s.repo.Transition(ctx, orgID, oppID, userID,
		func(current statemachine.State) (statemachine.State, error) {
			if err := statemachine.ValidateTransition(current, toState); err != nil {
				return "", err
			}
			return toState, nil
		})
	if err != nil {
		return "", err
	}

	if err := s.recorder.Append(ctx, eventlog.Entry{
		OrganizationID: &orgID,
		UserID:         &userID,
		OpportunityID:  &oppID,
		EventType:      eventlog.TypeStateChanged,
		SchemaVersion:  schemaVersion,
		Payload:        map[string]any{"from": string(fromState), "to": string(toState)},
	}); err != nil {
		return "", fmt.Errorf("append state_changed event: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.DecisionStateChanged{
			BaseEvent:      events.NewBaseEvent(),
			OrganizationID: orgID,
			UserID:         userID,
			OpportunityID:  oppID,
			FromState:      string(fromState),
			ToState:        string(toState),
		})
	}

	return toState, nil
}

// NormalizeVote maps user-facing vote input onto the canonical stored domain.
// PURSUE and SHORTLIST are aliases for UP; PASS is an alias for DOWN. A nil
// input means "clear the vote". Anything else is a validation error.
func NormalizeVote(vote *string) (*string, error) {
	if vote == nil {
		return nil, nil
	}
	switch strings.ToUpper(strings.TrimSpace(*vote)) {
	case VoteUp, "PURSUE", "SHORTLIST":
		v := VoteUp
		return &v, nil
	case VoteDown, "PASS":
		v := VoteDown
		return &v, nil
	}
	return nil, apperr.Validation(fmt.Sprintf("vote must be UP, DOWN, or null, got %q", *vote))
}

// SetVote records the user's current vote for the opportunity, overwriting
// any prior value, and appends a vote_cast audit event. Clearing (nil) keeps
// the row with a null value and is audited like any other change.
func (s *Service) SetVote(ctx context.Context, orgID, userID uuid.UUID, oppID int64, vote *string, schemaVersion string) (*string, error) {
	normalized, err := NormalizeVote(vote)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.OpportunityExists(ctx, oppID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound(opportunityNotFoundMessage)
	}

	if err := s.repo.UpsertVote(ctx, orgID, oppID, userID, normalized); err != nil {
		return nil, err
	}

	var payloadVote any
	if normalized != nil {
		payloadVote = *normalized
	}
	if err := s.recorder.Append(ctx, eventlog.Entry{
		OrganizationID: &orgID,
		UserID:         &userID,
		OpportunityID:  &oppID,
		EventType:      eventlog.TypeVoteCast,
		SchemaVersion:  schemaVersion,
		Payload:        map[string]any{"vote": payloadVote},
	}); err != nil {
		return nil, fmt.Errorf("append vote_cast event: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.VoteCast{
			BaseEvent:      events.NewBaseEvent(),
			OrganizationID: orgID,
			UserID:         userID,
			OpportunityID:  oppID,
			Vote:           normalized,
		})
	}

	return normalized, nil
}

// GetTally returns raw per-value vote counts for the opportunity within the
// organization.
func (s *Service) GetTally(ctx context.Context, orgID uuid.UUID, oppID int64) (repository.Tally, error) {
	return s.repo.GetTally(ctx, orgID, oppID)
}
