// Package identity provides the tenancy bounded context: organizations,
// users, the active-organization guard, and org profile settings.
package identity

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "bidlens_backend/internal/http"
	"bidlens_backend/internal/identity/handler"
	"bidlens_backend/internal/identity/repository"
	"bidlens_backend/internal/identity/service"
	"bidlens_backend/platform/logger"
	"bidlens_backend/platform/validator"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the identity module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module reads such as feed
// filtering by org profile.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// OrgGuard returns the active-organization middleware for protected routes.
func (m *Module) OrgGuard() gin.HandlerFunc {
	return RequireActiveOrg(m.service)
}

// RegisterRoutes mounts settings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/settings/profile", m.handler.GetProfile)
	ctx.Protected.PUT("/settings/profile", m.handler.UpdateProfile)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
