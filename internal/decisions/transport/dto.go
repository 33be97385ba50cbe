package transport

import "bidlens_backend/internal/decisions/repository"

// TransitionRequest asks for a decision state change on one opportunity.
type TransitionRequest struct {
	OpportunityID int64   `json:"opportunityId" validate:"required,min=1"`
	ToState       string  `json:"toState" validate:"required"`
	SchemaVersion string  `json:"schemaVersion,omitempty"`
}

// TransitionResponse returns the state after a successful transition.
type TransitionResponse struct {
	OpportunityID int64  `json:"opportunityId"`
	State         string `json:"state"`
}

// VoteRequest sets or clears the caller's vote on one opportunity.
// Vote is UP, DOWN, an accepted alias (PURSUE, SHORTLIST, PASS), or null to
// clear.
type VoteRequest struct {
	OpportunityID int64   `json:"opportunityId" validate:"required,min=1"`
	Vote          *string `json:"vote"`
	SchemaVersion string  `json:"schemaVersion,omitempty"`
}

// VoteResponse returns the normalized vote as stored.
type VoteResponse struct {
	OpportunityID int64   `json:"opportunityId"`
	Vote          *string `json:"vote"`
}

// TallyResponse returns raw per-value vote counts.
type TallyResponse struct {
	OpportunityID int64            `json:"opportunityId"`
	Tally         repository.Tally `json:"tally"`
}
