package reasonrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	reasonsGroup := apiBase.Group("/reasons")
	{
		// GET /reasons
		// List the reason catalogue
		reasonsGroup.GET("", listReasons)

		// POST /reasons
		// Create a reason
		reasonsGroup.POST("", createReason)

		// PATCH /reasons/:id
		// Update a reason
		reasonsGroup.PATCH("/:id", updateReason)

		// DELETE /reasons/:id
		// Delete an unused reason
		reasonsGroup.DELETE("/:id", deleteReason)
	}
}
