package approuter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	applicationsGroup := apiBase.Group("/applications")
	{
		// POST /applications
		// Open a PENDING application
		applicationsGroup.POST("", createApplication)

		// GET /applications/search
		// Bounded search over applications
		applicationsGroup.GET("/search", searchApplications)

		// GET /applications/:id
		// Get an application with its attachments
		applicationsGroup.GET("/:id", getApplication)

		// POST /applications/:id/review
		// Approve or reject
		applicationsGroup.POST("/:id/review", reviewApplication)

		// DELETE /applications/:id
		// Delete an application
		applicationsGroup.DELETE("/:id", deleteApplication)
	}
}
