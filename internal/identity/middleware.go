package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidlens_backend/internal/identity/service"
	"bidlens_backend/platform/httpkit"
)

// RequireActiveOrg rejects requests whose caller has no organization claim or
// whose organization is inactive. Mounted after authentication on all
// protected routes.
func RequireActiveOrg(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.GetIdentity(c)
		if identity == nil || !identity.IsAuthenticated() {
			httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}

		orgID := identity.OrganizationID()
		if orgID == nil {
			httpkit.Error(c, http.StatusForbidden, "no active organization", nil)
			c.Abort()
			return
		}

		if err := svc.RequireActiveOrganization(c.Request.Context(), *orgID); err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
