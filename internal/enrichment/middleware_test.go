package enrichment

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMiddlewareRouter(automationKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	jwtCalled := func(c *gin.Context) {
		// Stands in for the real JWT middleware.
		if c.GetHeader("Authorization") != "Bearer good" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}

	r := gin.New()
	r.GET("/ping", AutomationOrJWT(automationKey, jwtCalled), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAutomationOrJWT_ValidKey(t *testing.T) {
	r := newMiddlewareRouter("secret-key")
	if code := doRequest(t, r, map[string]string{AutomationKeyHeader: "secret-key"}); code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for valid automation key", code)
	}
}

func TestAutomationOrJWT_InvalidKey(t *testing.T) {
	r := newMiddlewareRouter("secret-key")
	if code := doRequest(t, r, map[string]string{AutomationKeyHeader: "wrong"}); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for wrong automation key", code)
	}
}

func TestAutomationOrJWT_KeyNotConfigured(t *testing.T) {
	// A presented key must never match when none is configured.
	r := newMiddlewareRouter("")
	if code := doRequest(t, r, map[string]string{AutomationKeyHeader: ""}); code == http.StatusNoContent {
		t.Error("request without credentials should not pass")
	}
	r = newMiddlewareRouter("")
	if code := doRequest(t, r, map[string]string{AutomationKeyHeader: "anything"}); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no key is configured", code)
	}
}

func TestAutomationOrJWT_FallsThroughToJWT(t *testing.T) {
	r := newMiddlewareRouter("secret-key")

	if code := doRequest(t, r, map[string]string{"Authorization": "Bearer good"}); code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for valid token", code)
	}
	if code := doRequest(t, r, nil); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", code)
	}
}
