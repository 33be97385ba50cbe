// Package ingestion provides the feed ingestion bounded context: the SAM.gov
// client, the normalize/upsert pipeline, and the run orchestrator.
package ingestion

import (
	"bidlens_backend/internal/events"
	apphttp "bidlens_backend/internal/http"
	"bidlens_backend/internal/ingestion/handler"
	"bidlens_backend/internal/ingestion/repository"
	"bidlens_backend/internal/ingestion/samclient"
	"bidlens_backend/internal/ingestion/service"
	"bidlens_backend/platform/config"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the slice of application config the ingestion module needs.
type Config interface {
	config.FeedConfig
	config.IngestionConfig
}

// Module is the ingestion bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	orchestrator *service.Orchestrator
}

// NewModule creates and initializes the ingestion module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, cfg Config, profiles handler.ProfileSource, val *validator.Validator, log *logger.Logger) *Module {
	feed := samclient.NewClient(samclient.Config{
		BaseURL:    cfg.GetSAMBaseURL(),
		APIKey:     cfg.GetSAMAPIKey(),
		MaxRetries: cfg.GetSAMMaxRetries(),
	})
	repo := repository.New(pool)
	orchestrator := service.NewOrchestrator(feed, repo, bus, cfg, log)
	h := handler.New(orchestrator, repo, profiles, cfg, val)

	return &Module{
		handler:      h,
		orchestrator: orchestrator,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ingestion"
}

// Orchestrator returns the run orchestrator for external triggers such as the
// scheduled worker.
func (m *Module) Orchestrator() *service.Orchestrator {
	return m.orchestrator
}

// RegisterRoutes mounts ingestion routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/ingestion/run", m.handler.Run)
	ctx.Protected.GET("/ingestion/runs", m.handler.Runs)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
