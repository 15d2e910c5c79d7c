package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	RespondWithError(c, err)
	assert.True(t, c.IsAborted())
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondWithError(t *testing.T) {
	t.Run("Should map each code to its status", func(t *testing.T) {
		cases := map[string]int{
			core.ErrCodeForbidden:         http.StatusForbidden,
			core.ErrCodeNotFound:          http.StatusNotFound,
			core.ErrCodeInvalidState:      http.StatusBadRequest,
			core.ErrCodeBadRequest:        http.StatusBadRequest,
			core.ErrCodeInvalidTransition: http.StatusConflict,
			core.ErrCodeConflict:          http.StatusConflict,
			core.ErrCodeTimeout:           http.StatusGatewayTimeout,
		}
		for code, want := range cases {
			status, body := respond(t, core.NewError(errors.New("boom"), code, nil))
			assert.Equal(t, want, status, code)
			assert.Equal(t, code, body["code"], code)
			assert.EqualValues(t, want, body["status"], code)
		}
	})
	t.Run("Should give both credential failures the same body", func(t *testing.T) {
		s1, b1 := respond(t, core.NewError(errors.New("no such user"), core.ErrCodeInvalidCredentials, nil))
		s2, b2 := respond(t, core.NewError(errors.New("account disabled"), core.ErrCodeAccountDisabled, nil))
		assert.Equal(t, http.StatusUnauthorized, s1)
		assert.Equal(t, s1, s2)
		assert.Equal(t, b1, b2)
		assert.Equal(t, core.ErrCodeInvalidCredentials, b2["code"])
	})
	t.Run("Should hide uncoded errors behind a 500", func(t *testing.T) {
		status, body := respond(t, fmt.Errorf("query failed: %w", errors.New("password=hunter2")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal server error", body["details"])
		assert.NotContains(t, body, "code")
	})
	t.Run("Should surface coded details as extras", func(t *testing.T) {
		err := core.InvalidTransition("application is no longer pending", map[string]any{
			"application_id": "abc",
			"status":         "APPROVED",
		})
		status, body := respond(t, fmt.Errorf("review: %w", err))
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "application is no longer pending", body["details"])
		assert.Equal(t, "abc", body["application_id"])
		assert.EqualValues(t, http.StatusConflict, body["status"])
	})
}
