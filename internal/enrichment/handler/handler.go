package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bidlens_backend/internal/enrichment/repository"
	"bidlens_backend/internal/enrichment/service"
	"bidlens_backend/internal/enrichment/transport"
	"bidlens_backend/platform/httpkit"
	"bidlens_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid opportunity ID"
)

// Handler handles HTTP requests from the external brief generator.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new enrichment handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Pending lists opportunities awaiting a brief.
// GET /api/v1/enrichment/pending
func (h *Handler) Pending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.svc.Pending(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.PendingItem, 0, len(items))
	for _, item := range items {
		out = append(out, transport.PendingItem{
			OpportunityID: item.OpportunityID,
			NoticeID:      item.NoticeID,
			Title:         item.Title,
			BriefStatus:   item.BriefStatus,
		})
	}
	httpkit.OK(c, out)
}

// Text returns the truncated enrichment source text for one opportunity.
// GET /api/v1/enrichment/:oppId/text
func (h *Handler) Text(c *gin.Context) {
	oppID, ok := h.oppID(c)
	if !ok {
		return
	}

	text, err := h.svc.Text(c.Request.Context(), oppID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TextResponse{OpportunityID: oppID, Text: text})
}

// SaveBrief stores a generated brief with status ok.
// PUT /api/v1/enrichment/:oppId/brief
func (h *Handler) SaveBrief(c *gin.Context) {
	var req transport.BriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	oppID, ok := h.oppID(c)
	if !ok {
		return
	}

	brief, err := h.svc.SaveBrief(c.Request.Context(), oppID, req.Brief, req.Model)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(brief))
}

// Reset moves a brief back to pending or failed.
// POST /api/v1/enrichment/:oppId/reset
func (h *Handler) Reset(c *gin.Context) {
	var req transport.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	oppID, ok := h.oppID(c)
	if !ok {
		return
	}

	brief, err := h.svc.Reset(c.Request.Context(), oppID, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(brief))
}

func (h *Handler) oppID(c *gin.Context) (int64, bool) {
	oppID, err := strconv.ParseInt(c.Param("oppId"), 10, 64)
	if err != nil || oppID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return oppID, true
}

func toResponse(b *repository.Brief) transport.BriefResponse {
	return transport.BriefResponse{
		OpportunityID: b.OpportunityID,
		Status:        b.Status,
		Brief:         b.Brief,
		Model:         b.Model,
		UpdatedAt:     b.UpdatedAt,
	}
}
