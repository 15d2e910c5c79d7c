package authrouter

import "github.com/gin-gonic/gin"

// Register mounts the auth routes. public is unauthenticated; protected
// already resolves the caller. loginGuards run in front of /auth/token.
func Register(public, protected *gin.RouterGroup, loginGuards ...gin.HandlerFunc) {
	// POST /auth/token
	// Exchange credentials for a session token
	public.POST("/auth/token", append(loginGuards, issueToken)...)

	// POST /auth/logout
	// Revoke the current session
	protected.POST("/auth/logout", logout)

	usersGroup := protected.Group("/users")
	{
		// GET /users/me
		// Identity, role and shell routes of the caller
		usersGroup.GET("/me", getMe)

		// GET /users
		// List accounts
		usersGroup.GET("", listUsers)

		// POST /users
		// Create an account
		usersGroup.POST("", createUser)

		// GET /users/:id
		// Get an account
		usersGroup.GET("/:id", getUser)

		// PATCH /users/:id
		// Update an account
		usersGroup.PATCH("/:id", updateUser)
	}
}
