package attachmentrouter

import "github.com/gin-gonic/gin"

// Register mounts the attachment routes under /applications/:id. uploadGuards
// run in front of the upload handler only.
func Register(apiBase *gin.RouterGroup, uploadGuards ...gin.HandlerFunc) {
	attachmentsGroup := apiBase.Group("/applications/:id/attachments")
	{
		// POST /applications/:id/attachments
		// Upload evidence while the application is PENDING
		attachmentsGroup.POST("", append(uploadGuards, addAttachment)...)

		// GET /applications/:id/attachments
		// List attachments
		attachmentsGroup.GET("", listAttachments)

		// GET /applications/:id/attachments/:attachment_id/url
		// Download link for one attachment
		attachmentsGroup.GET("/:attachment_id/url", attachmentURL)
	}
}
