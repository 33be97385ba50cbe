// Package enrichment exposes the brief endpoints consumed by the external
// AI-brief generator, authenticated by user token or shared automation key.
package enrichment

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"bidlens_backend/internal/enrichment/handler"
	"bidlens_backend/internal/enrichment/repository"
	"bidlens_backend/internal/enrichment/service"
	apphttp "bidlens_backend/internal/http"
	"bidlens_backend/platform/config"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/validator"
)

// Module is the enrichment bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	automationKey string
}

// NewModule creates and initializes the enrichment module.
func NewModule(pool *pgxpool.Pool, cfg config.EnrichmentConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg.GetEnrichmentTextCap(), log)
	h := handler.New(svc, val)

	return &Module{
		handler:       h,
		automationKey: cfg.GetAutomationKey(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrichment"
}

// RegisterRoutes mounts enrichment routes. These accept either a user token
// or the shared automation key, so they live outside the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/enrichment")
	group.Use(AutomationOrJWT(m.automationKey, ctx.AuthMiddleware))

	group.GET("/pending", m.handler.Pending)
	group.GET("/:oppId/text", m.handler.Text)
	group.PUT("/:oppId/brief", m.handler.SaveBrief)
	group.POST("/:oppId/reset", m.handler.Reset)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
