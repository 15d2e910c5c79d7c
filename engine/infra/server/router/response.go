package router

import (
	"fmt"
	"net/http"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/userctx"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/appstate"
	"github.com/gin-gonic/gin"
)

// Response is the envelope for every successful JSON body.
type Response struct {
	Status  int    `json:"status"         example:"200"`
	Message string `json:"message"        example:"Success"`
	Data    any    `json:"data,omitempty"`
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Status: http.StatusOK, Message: message, Data: data})
}

func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Status: http.StatusCreated, Message: message, Data: data})
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// GetAppState loads the state injected by appstate.StateMiddleware. On
// failure the response is already written.
func GetAppState(c *gin.Context) *appstate.State {
	state, err := appstate.GetState(c.Request.Context())
	if err != nil {
		RespondWithError(c, fmt.Errorf("%s: %w", ErrMsgAppStateNotInitialized, err))
		return nil
	}
	return state
}

// GetPrincipal returns the caller resolved by the auth middleware. On
// failure a 401 is already written.
func GetPrincipal(c *gin.Context) *authmodel.Principal {
	principal, ok := userctx.PrincipalFromContext(c.Request.Context())
	if !ok {
		RespondWithError(c, core.NewError(ErrUnauthenticated, core.ErrCodeInvalidCredentials, nil))
		return nil
	}
	return principal
}

// GetIDParam parses a path ID. On failure a 400 is already written.
func GetIDParam(c *gin.Context, name string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		RespondWithError(c, core.BadRequest(fmt.Errorf("invalid %s: %w", name, err)))
		return "", false
	}
	return id, true
}

// Execute runs a use case bounded by the operation timeout.
func Execute[T any](c *gin.Context, state *appstate.State, step string, uc core.Usecase[T]) (T, error) {
	return core.WithTimeoutResult(c.Request.Context(), step, state.Timeouts.Operation, uc.Execute)
}
