package authrouter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	authmw "github.com/compozy/defaultdesk/engine/infra/server/middleware/auth"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/gin-gonic/gin"
)

var errMissingCredentials = errors.New("email and password are required")

// issueToken exchanges credentials for a session token.
//
//	@Summary		Issue token
//	@Description	Verify credentials and open a session. Accepts an OAuth2 password form or JSON.
//	@Tags			auth
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authrouter.TokenRequest		true	"Credentials"
//	@Success		200		{object}	authrouter.TokenResponse	"Session issued"
//	@Failure		400		{object}	core.ProblemDocument	"Missing credentials"
//	@Failure		401		{object}	core.ProblemDocument	"Invalid credentials"
//	@Failure		429		{object}	core.ProblemDocument	"Too many attempts"
//	@Router			/auth/token [post]
func issueToken(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		router.RespondWithError(c, core.BadRequest(errMissingCredentials))
		return
	}
	issued, err := core.WithTimeoutResult(
		c.Request.Context(),
		"authenticate",
		state.Timeouts.Auth,
		uc.NewAuthenticate(state.AuthRepo, state.AuthSettings, req.Email, req.Password).Execute,
	)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresAt:   issued.Session.ExpiresAt,
	})
}

// logout revokes the session behind the presented token.
//
//	@Summary		Logout
//	@Tags			auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	core.ProblemDocument	"Invalid credentials"
//	@Router			/auth/logout [post]
func logout(c *gin.Context) {
	state := router.GetAppState(c)
	if state == nil {
		return
	}
	token := authmw.TokenFromContext(c)
	if _, err := router.Execute(c, state, "logout", uc.NewLogout(state.AuthRepo, token)); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondNoContent(c)
}
