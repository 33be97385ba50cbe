package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/identity/service"
	"bidlens_backend/internal/identity/transport"
	"bidlens_backend/platform/httpkit"
	"bidlens_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingOrg       = "no active organization"
)

// Handler handles HTTP requests for organization profile settings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new identity handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetProfile returns the caller organization's profile.
// GET /api/v1/settings/profile
func (h *Handler) GetProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID := identity.OrganizationID()
	if orgID == nil {
		httpkit.Error(c, http.StatusForbidden, msgMissingOrg, nil)
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), *orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(profile))
}

// UpdateProfile replaces the caller organization's profile.
// PUT /api/v1/settings/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req transport.ProfileRequest
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

	profile, err := h.svc.UpdateProfile(c.Request.Context(), &repository.Profile{
		OrganizationID:   *orgID,
		IncludeKeywords:  req.IncludeKeywords,
		ExcludeKeywords:  req.ExcludeKeywords,
		IncludeAgencies:  req.IncludeAgencies,
		ExcludeAgencies:  req.ExcludeAgencies,
		MinDaysOut:       req.MinDaysOut,
		MaxDaysOut:       req.MaxDaysOut,
		CategoryCodes:    req.CategoryCodes,
		LookbackDays:     req.LookbackDays,
		DigestMaxItems:   req.DigestMaxItems,
		DigestRecipients: req.DigestRecipients,
		DigestTimeLocal:  req.DigestTimeLocal,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(profile))
}

func toResponse(p *repository.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		IncludeKeywords:  p.IncludeKeywords,
		ExcludeKeywords:  p.ExcludeKeywords,
		IncludeAgencies:  p.IncludeAgencies,
		ExcludeAgencies:  p.ExcludeAgencies,
		MinDaysOut:       p.MinDaysOut,
		MaxDaysOut:       p.MaxDaysOut,
		CategoryCodes:    p.CategoryCodes,
		LookbackDays:     p.LookbackDays,
		DigestMaxItems:   p.DigestMaxItems,
		DigestRecipients: p.DigestRecipients,
		DigestTimeLocal:  p.DigestTimeLocal,
		UpdatedAt:        p.UpdatedAt,
	}
}
