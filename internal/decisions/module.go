// Package decisions provides the bid/no-bid decision bounded context: the
// state machine governing opportunity lifecycle per organization, and the
// per-user voting aggregate.
package decisions

import (
	"bidlens_backend/internal/decisions/handler"
	"bidlens_backend/internal/decisions/repository"
	"bidlens_backend/internal/decisions/service"
	"bidlens_backend/internal/eventlog"
	"bidlens_backend/internal/events"
	apphttp "bidlens_backend/internal/http"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the decisions bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the decisions module with all its dependencies.
func NewModule(pool *pgxpool.Pool, recorder eventlog.Recorder, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, recorder, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "decisions"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts decision routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/decisions/transition", m.handler.Transition)
	ctx.Protected.POST("/decisions/vote", m.handler.Vote)
	ctx.Protected.GET("/opportunities/:id/votes", m.handler.Tally)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
