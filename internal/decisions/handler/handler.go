package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bidlens_backend/internal/decisions/service"
	"bidlens_backend/internal/decisions/transport"
	"bidlens_backend/platform/httpkit"
	"bidlens_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid opportunity ID"
	msgMissingOrg       = "no active organization"
)

// Handler handles HTTP requests for decision transitions and votes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new decisions handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Transition applies a decision state change.
// POST /api/v1/decisions/transition
func (h *Handler) Transition(c *gin.Context) {
	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID := identity.OrganizationID()
	if orgID == nil {
		httpkit.Error(c, http.StatusForbidden, msgMissingOrg, nil)
		return
	}

	state, err := h.svc.Transition(c.Request.Context(), *orgID, identity.UserID(), req.OpportunityID, req.ToState, req.SchemaVersion)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TransitionResponse{
		OpportunityID: req.OpportunityID,
		State:         string(state),
	})
}

// Vote sets or clears the caller's vote.
// POST /api/v1/decisions/vote
func (h *Handler) Vote(c *gin.Context) {
	var req transport.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID := identity.OrganizationID()
	if orgID == nil {
		httpkit.Error(c, http.StatusForbidden, msgMissingOrg, nil)
		return
	}

	vote, err := h.svc.SetVote(c.Request.Context(), *orgID, identity.UserID(), req.OpportunityID, req.Vote, req.SchemaVersion)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.VoteResponse{
		OpportunityID: req.OpportunityID,
		Vote:          vote,
	})
}

// Tally returns raw per-value vote counts for one opportunity.
// GET /api/v1/opportunities/:id/votes
func (h *Handler) Tally(c *gin.Context) {
	oppID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || oppID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID := identity.OrganizationID()
	if orgID == nil {
		httpkit.Error(c, http.StatusForbidden, msgMissingOrg, nil)
		return
	}

	tally, err := h.svc.GetTally(c.Request.Context(), *orgID, oppID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TallyResponse{OpportunityID: oppID, Tally: tally})
}
