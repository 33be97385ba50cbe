package enrichment

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"bidlens_backend/platform/httpkit"
)

// AutomationKeyHeader carries the shared key used by the external brief
// generator instead of a user token.
const AutomationKeyHeader = "X-Automation-Key"

// AutomationOrJWT authorizes a request either by the shared automation key
// header or by falling through to the regular JWT middleware. The key is
// compared in constant time.
func AutomationOrJWT(automationKey string, jwtAuth gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AutomationKeyHeader)
		if presented != "" {
			if automationKey == "" ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(automationKey)) != 1 {
				httpkit.Error(c, http.StatusUnauthorized, "invalid automation key", nil)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		jwtAuth(c)
	}
}
