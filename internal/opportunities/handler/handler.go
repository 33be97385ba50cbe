package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidlens_backend/internal/opportunities/service"
	"bidlens_backend/internal/opportunities/transport"
	"bidlens_backend/platform/httpkit"
	"bidlens_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid opportunity ID"
	msgMissingOrg       = "no active organization"
)

// Handler handles HTTP requests for opportunity views.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new opportunities handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Feed returns the organization's filtered feed.
// GET /api/v1/opportunities?tab=solicitations&showAll=false
func (h *Handler) Feed(c *gin.Context) {
	identity, orgID := h.callerOrg(c)
	if identity == nil {
		return
	}

	tab := c.DefaultQuery("tab", service.TabSolicitations)
	showAll := c.Query("showAll") == "true"

	page, err := h.svc.Feed(c.Request.Context(), *orgID, identity.UserID(), tab, showAll)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FeedResponse{
		Items:   transport.FromItems(page.Items),
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

// Detail returns one opportunity with org overlays and workspace.
// GET /api/v1/opportunities/:id
func (h *Handler) Detail(c *gin.Context) {
	identity, orgID := h.callerOrg(c)
	if identity == nil {
		return
	}
	oppID, ok := h.oppID(c)
	if !ok {
		return
	}

	item, err := h.svc.Detail(c.Request.Context(), *orgID, identity.UserID(), oppID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromItem(item))
}

// Saved returns the organization's saved/bid opportunities.
// GET /api/v1/opportunities/saved?states=SAVED,BID&tab=solicitations
func (h *Handler) Saved(c *gin.Context) {
	identity, orgID := h.callerOrg(c)
	if identity == nil {
		return
	}

	var states []string
	if raw := c.Query("states"); raw != "" {
		states = strings.Split(raw, ",")
	}

	items, err := h.svc.Saved(c.Request.Context(), *orgID, identity.UserID(), states, c.Query("tab"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromItems(items))
}

// Calendar returns saved solicitations grouped by month and week.
// GET /api/v1/opportunities/calendar
func (h *Handler) Calendar(c *gin.Context) {
	identity, orgID := h.callerOrg(c)
	if identity == nil {
		return
	}

	months, err := h.svc.Calendar(c.Request.Context(), *orgID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := transport.CalendarResponse{Months: make([]transport.CalendarMonth, 0, len(months))}
	for _, m := range months {
		month := transport.CalendarMonth{Month: m.Month}
		for _, w := range m.Weeks {
			month.Weeks = append(month.Weeks, transport.CalendarWeek{
				Week:  w.Week,
				Items: transport.FromItems(w.Items),
			})
		}
		out.Months = append(out.Months, month)
	}
	httpkit.OK(c, out)
}

// UpdateWorkspace replaces the org's annotations for one opportunity.
// PUT /api/v1/opportunities/:id/workspace
func (h *Handler) UpdateWorkspace(c *gin.Context) {
	var req transport.WorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity, orgID := h.callerOrg(c)
	if identity == nil {
		return
	}
	oppID, ok := h.oppID(c)
	if !ok {
		return
	}

	var internalDeadline *time.Time
	if req.InternalDeadline != nil {
		parsed, err := time.Parse("2006-01-02", *req.InternalDeadline)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "internalDeadline must be YYYY-MM-DD")
			return
		}
		internalDeadline = &parsed
	}

	ws, err := h.svc.UpdateWorkspace(c.Request.Context(), *orgID, oppID, internalDeadline, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.WorkspaceResponse{
		InternalDeadline: ws.InternalDeadline,
		Notes:            ws.Notes,
	})
}

// callerOrg extracts the authenticated identity and its organization id,
// writing the error response itself when either is missing.
func (h *Handler) callerOrg(c *gin.Context) (httpkit.Identity, *uuid.UUID) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return nil, nil
	}
	orgID := identity.OrganizationID()
	if orgID == nil {
		httpkit.Error(c, http.StatusForbidden, msgMissingOrg, nil)
		return nil, nil
	}
	return identity, orgID
}

// oppID parses the :id path parameter.
func (h *Handler) oppID(c *gin.Context) (int64, bool) {
	oppID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || oppID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return oppID, true
}
