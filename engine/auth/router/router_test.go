package authrouter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/compozy/defaultdesk/engine/auth/authtest"
	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	authmw "github.com/compozy/defaultdesk/engine/infra/server/middleware/auth"
	"github.com/compozy/defaultdesk/engine/infra/server/router/routertest"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitForTests()
}

type fixture struct {
	repo   *authtest.MemoryRepository
	engine *gin.Engine
}

// newFixture wires the routes behind the real bearer middleware.
func newFixture() *fixture {
	repo := authtest.NewMemoryRepository()
	state := routertest.NewState()
	state.AuthRepo = repo
	state.AuthSettings = authtest.Settings
	manager := authmw.NewManager(repo, state.Timeouts.Auth)
	engine := routertest.NewRouter(state, nil, func(g *gin.RouterGroup) {
		Register(g, g.Group("", manager.Middleware()))
	})
	return &fixture{repo: repo, engine: engine}
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	w := routertest.Do(t, f.engine, http.MethodPost, "/auth/token", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestIssueToken(t *testing.T) {
	t.Run("Should issue a bearer token for a JSON login", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("op@example.com", "secret-pw", model.RoleOperator)
		w := routertest.Do(t, f.engine, http.MethodPost, "/auth/token", map[string]string{
			"email":    "OP@example.com",
			"password": "secret-pw",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var out TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.True(t, strings.HasPrefix(out.AccessToken, model.SessionTokenPrefix))
		assert.Equal(t, "bearer", out.TokenType)
		assert.False(t, out.ExpiresAt.IsZero())
	})

	t.Run("Should accept the OAuth2 password form", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("rev@example.com", "secret-pw", model.RoleReviewer)
		form := url.Values{"username": {"rev@example.com"}, "password": {"secret-pw"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should answer unknown and wrong credentials identically", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("op@example.com", "secret-pw", model.RoleOperator)
		wrong := routertest.Do(t, f.engine, http.MethodPost, "/auth/token",
			map[string]string{"email": "op@example.com", "password": "nope"})
		unknown := routertest.Do(t, f.engine, http.MethodPost, "/auth/token",
			map[string]string{"email": "ghost@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
		assert.Equal(t, core.ErrCodeInvalidCredentials, routertest.DecodeProblem(t, wrong).Code)
	})

	t.Run("Should reject missing fields", func(t *testing.T) {
		f := newFixture()
		w := routertest.Do(t, f.engine, http.MethodPost, "/auth/token", map[string]string{"email": "a@b.c"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Run("Should revoke the session so the token stops working", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("op@example.com", "secret-pw", model.RoleOperator)
		token := f.login(t, "op@example.com", "secret-pw")

		assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/auth/logout", token, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/users/me", token, nil).Code)
	})
}

func TestGetMe(t *testing.T) {
	t.Run("Should return identity, role and routes", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("rev@example.com", "secret-pw", model.RoleReviewer)
		token := f.login(t, "rev@example.com", "secret-pw")

		w := f.do(t, http.MethodGet, "/users/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me MeResponse
		routertest.DecodeData(t, w, &me)
		assert.Equal(t, model.RoleReviewer, me.Role)
		assert.Equal(t, "rev@example.com", me.User.Email)
		assert.Contains(t, me.Routes, "/applications")
		assert.NotContains(t, me.Routes, "/users")
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Should reflect a role change on the next request", func(t *testing.T) {
		f := newFixture()
		user := f.repo.SeedUser("op@example.com", "secret-pw", model.RoleOperator)
		token := f.login(t, "op@example.com", "secret-pw")
		user.Role = model.RoleAdmin
		require.NoError(t, f.repo.UpdateUser(t.Context(), user))

		var me MeResponse
		routertest.DecodeData(t, f.do(t, http.MethodGet, "/users/me", token, nil), &me)
		assert.Equal(t, model.RoleAdmin, me.Role)
		assert.Contains(t, me.Routes, "/users")
	})
}

func TestUserManagement(t *testing.T) {
	t.Run("Should let an admin create, read and disable a user", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("admin@example.com", "secret-pw", model.RoleAdmin)
		token := f.login(t, "admin@example.com", "secret-pw")

		created := f.do(t, http.MethodPost, "/users", token, map[string]any{
			"email":    "new@example.com",
			"password": "long-enough",
			"role":     "reviewer",
		})
		require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
		var user model.User
		routertest.DecodeData(t, created, &user)
		assert.Equal(t, model.RoleReviewer, user.Role)

		got := f.do(t, http.MethodGet, "/users/"+user.ID.String(), token, nil)
		assert.Equal(t, http.StatusOK, got.Code)

		disabled := f.do(t, http.MethodPatch, "/users/"+user.ID.String(), token, map[string]any{"active": false})
		require.Equal(t, http.StatusOK, disabled.Code)
		var updated model.User
		routertest.DecodeData(t, disabled, &updated)
		assert.False(t, updated.Active)

		listed := f.do(t, http.MethodGet, "/users", token, nil)
		var users []model.User
		routertest.DecodeData(t, listed, &users)
		assert.Len(t, users, 2)
	})

	t.Run("Should reject an unknown role with 400", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("admin@example.com", "secret-pw", model.RoleAdmin)
		token := f.login(t, "admin@example.com", "secret-pw")
		w := f.do(t, http.MethodPost, "/users", token, map[string]any{
			"email":    "x@example.com",
			"password": "long-enough",
			"role":     "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should forbid non-admins", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("op@example.com", "secret-pw", model.RoleOperator)
		token := f.login(t, "op@example.com", "secret-pw")
		w := f.do(t, http.MethodGet, "/users", token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, core.ErrCodeForbidden, routertest.DecodeProblem(t, w).Code)
	})

	t.Run("Should return 409 for a duplicate email", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("admin@example.com", "secret-pw", model.RoleAdmin)
		token := f.login(t, "admin@example.com", "secret-pw")
		w := f.do(t, http.MethodPost, "/users", token, map[string]any{
			"email":    "admin@example.com",
			"password": "long-enough",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Should return 404 for an unknown user", func(t *testing.T) {
		f := newFixture()
		f.repo.SeedUser("admin@example.com", "secret-pw", model.RoleAdmin)
		token := f.login(t, "admin@example.com", "secret-pw")
		w := f.do(t, http.MethodGet, "/users/"+core.MustNewID().String(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
