package authrouter

import (
	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/gin-gonic/gin"
)

// getMe returns the caller's identity, role and shell routes.
//
//	@Summary		Current user
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	router.Response{data=authrouter.MeResponse}	"Caller resolved"
//	@Failure		401	{object}	core.ProblemDocument					"Invalid credentials"
//	@Router			/users/me [get]
func getMe(c *gin.Context) {
	principal := router.GetPrincipal(c)
	if principal == nil {
		return
	}
	router.RespondOK(c, "user retrieved", MeResponse{
		User:   principal.User,
		Role:   principal.Role(),
		Routes: policy.RoutesForRole(principal.Role()),
	})
}

// listUsers returns every account. Admin only.
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	router.Response{data=[]model.User}	"Users retrieved"
//	@Failure		403	{object}	core.ProblemDocument				"Forbidden"
//	@Router			/users [get]
func listUsers(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	users, err := router.Execute(c, state, "list users", uc.NewListUsers(state.AuthRepo, principal))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "users retrieved", users)
}

// getUser returns one account.
//
//	@Summary		Get user
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string								true	"User ID"
//	@Success		200	{object}	router.Response{data=model.User}	"User retrieved"
//	@Failure		403	{object}	core.ProblemDocument				"Forbidden"
//	@Failure		404	{object}	core.ProblemDocument				"User not found"
//	@Router			/users/{id} [get]
func getUser(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	user, err := router.Execute(c, state, "get user", uc.NewGetUser(state.AuthRepo, principal, id))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "user retrieved", user)
}

// createUser creates an account. Admin only.
//
//	@Summary		Create user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		uc.CreateUserInput					true	"New user"
//	@Success		201		{object}	router.Response{data=model.User}	"User created"
//	@Failure		400		{object}	core.ProblemDocument				"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument				"Forbidden"
//	@Failure		409		{object}	core.ProblemDocument				"Email already exists"
//	@Router			/users [post]
func createUser(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	var input uc.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	user, err := router.Execute(c, state, "create user",
		uc.NewCreateUser(state.AuthRepo, state.AuthSettings, principal, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondCreated(c, "user created", user)
}

// updateUser changes role, display name, password or active flag. Admin only.
//
//	@Summary		Update user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"User ID"
//	@Param			request	body		uc.UpdateUserInput					true	"Changes"
//	@Success		200		{object}	router.Response{data=model.User}	"User updated"
//	@Failure		400		{object}	core.ProblemDocument				"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument				"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument				"User not found"
//	@Router			/users/{id} [patch]
func updateUser(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	var input uc.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	user, err := router.Execute(c, state, "update user",
		uc.NewUpdateUser(state.AuthRepo, state.AuthSettings, principal, id, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "user updated", user)
}
