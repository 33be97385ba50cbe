// Package opportunities provides the opportunity read views: the filtered
// org feed, detail with overlays, saved lists, the deadline calendar, and
// per-org workspace annotations.
package opportunities

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "bidlens_backend/internal/http"
	"bidlens_backend/internal/opportunities/handler"
	"bidlens_backend/internal/opportunities/repository"
	"bidlens_backend/internal/opportunities/service"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/validator"
)

// Module is the opportunities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the opportunities module. profiles is the
// identity repository providing org filter profiles.
func NewModule(pool *pgxpool.Pool, profiles service.ProfileSource, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, profiles, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// RegisterRoutes mounts opportunity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/opportunities", m.handler.Feed)
	ctx.Protected.GET("/opportunities/saved", m.handler.Saved)
	ctx.Protected.GET("/opportunities/calendar", m.handler.Calendar)
	ctx.Protected.GET("/opportunities/:id", m.handler.Detail)
	ctx.Protected.PUT("/opportunities/:id/workspace", m.handler.UpdateWorkspace)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
