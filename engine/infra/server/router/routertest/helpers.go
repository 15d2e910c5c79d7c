// Package routertest builds gin engines for handler tests: state and
// principal are injected the way the production middleware chain does it.
package routertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/userctx"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/appstate"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// NewState returns a state with default config. Tests assign the
// repositories they exercise.
func NewState() *appstate.State {
	cfg := config.Default()
	return &appstate.State{
		BaseDeps: appstate.BaseDeps{Config: cfg},
		Timeouts: appstate.TimeoutsFromConfig(cfg),
	}
}

// NewRouter mounts register on the root group behind the state middleware.
// A nil principal leaves the request unauthenticated.
func NewRouter(state *appstate.State, principal *authmodel.Principal, register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(appstate.StateMiddleware(state))
	if principal != nil {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(userctx.WithPrincipal(c.Request.Context(), principal))
			c.Next()
		})
	}
	register(&r.RouterGroup)
	return r
}

// Do sends body as JSON (nil sends no body) and records the response.
func Do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeData unmarshals the data field of a success envelope into out.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// DecodeProblem unmarshals an error body.
func DecodeProblem(t *testing.T, w *httptest.ResponseRecorder) core.ProblemDocument {
	t.Helper()
	require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	var doc core.ProblemDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}
