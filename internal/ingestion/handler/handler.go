package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityrepo "bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/ingestion/repository"
	"bidlens_backend/internal/ingestion/service"
	"bidlens_backend/internal/ingestion/transport"
	"bidlens_backend/platform/config"
	"bidlens_backend/platform/httpkit"
	"bidlens_backend/platform/validator"
)

// ProfileSource provides the caller organization's stored ingestion
// preferences. Satisfied by the identity repository.
type ProfileSource interface {
	GetProfile(ctx context.Context, orgID uuid.UUID) (*identityrepo.Profile, error)
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for ingestion runs.
type Handler struct {
	orchestrator *service.Orchestrator
	repo         repository.Repository
	profiles     ProfileSource
	cfg          config.IngestionConfig
	val          *validator.Validator
}

// New creates a new ingestion handler.
func New(orchestrator *service.Orchestrator, repo repository.Repository, profiles ProfileSource, cfg config.IngestionConfig, val *validator.Validator) *Handler {
	return &Handler{orchestrator: orchestrator, repo: repo, profiles: profiles, cfg: cfg, val: val}
}

// Run triggers one ingestion run synchronously and returns its summary.
// POST /api/v1/ingestion/run
func (h *Handler) Run(c *gin.Context) {
	var req transport.RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	var profile *identityrepo.Profile
	if h.profiles != nil {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}
		if orgID := identity.OrganizationID(); orgID != nil {
			p, err := h.profiles.GetProfile(c.Request.Context(), *orgID)
			if httpkit.HandleError(c, err) {
				return
			}
			profile = p
		}
	}

	codes, lookback := resolveRunParams(req, profile, h.cfg)

	summary, err := h.orchestrator.Run(c.Request.Context(), codes, lookback)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

// Runs lists recent ingestion runs, newest first.
// GET /api/v1/ingestion/runs
func (h *Handler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.repo.ListRuns(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.RunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, transport.RunListItem{
			ID:         r.ID,
			Source:     r.Source,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Inserted:   r.Totals.Inserted,
			Updated:    r.Totals.Updated,
			Skipped:    r.Totals.Skipped,
			Filtered:   r.Totals.Filtered,
			Errors:     r.Totals.Errors,
		})
	}
	httpkit.OK(c, items)
}

// resolveRunParams picks the run's category codes and lookback window:
// explicit request values win, then the organization's stored profile, then
// the configured defaults.
func resolveRunParams(req transport.RunRequest, profile *identityrepo.Profile, cfg config.IngestionConfig) ([]string, int) {
	codes := req.CategoryCodes
	if len(codes) == 0 && profile != nil && profile.CategoryCodes != nil {
		for _, code := range strings.Split(*profile.CategoryCodes, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	if len(codes) == 0 {
		codes = cfg.GetDefaultCategoryCodes()
	}

	lookback := req.LookbackDays
	if lookback == 0 && profile != nil && profile.LookbackDays != nil {
		lookback = *profile.LookbackDays
	}
	if lookback <= 0 {
		lookback = cfg.GetDefaultLookbackDays()
	}
	return codes, lookback
}
