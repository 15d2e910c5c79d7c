package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denyAll(c *gin.Context) {
	router.RespondProblemWithCode(c, http.StatusUnauthorized, core.ErrCodeInvalidCredentials, "denied")
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, RegisterRoutes(&r.RouterGroup, RouteDeps{Auth: denyAll, MaxUpload: 1024}))
	return r
}

func TestRegisterRoutes(t *testing.T) {
	t.Run("Should mount every resource", func(t *testing.T) {
		r := newTestEngine(t)
		mounted := map[string]bool{}
		for _, route := range r.Routes() {
			mounted[route.Method+" "+route.Path] = true
		}
		for _, want := range []string{
			"POST /auth/token",
			"POST /auth/logout",
			"GET /users/me",
			"GET /customers",
			"PATCH /reasons/:id",
			"GET /applications/search",
			"POST /applications/:id/review",
			"POST /applications/:id/attachments",
			"GET /applications/:id/attachments/:attachment_id/url",
			"POST /notifications/:id/read",
			"GET /stats/summary",
			"GET /audit-logs",
		} {
			assert.True(t, mounted[want], want)
		}
	})

	t.Run("Should put resources behind the auth middleware", func(t *testing.T) {
		r := newTestEngine(t)
		for _, path := range []string{"/customers", "/applications/search", "/audit-logs", "/users/me"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("Should require an auth middleware", func(t *testing.T) {
		r := gin.New()
		assert.Error(t, RegisterRoutes(&r.RouterGroup, RouteDeps{}))
	})
}
