package auditrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	// GET /audit-logs
	// Admin-only audit trail
	apiBase.GET("/audit-logs", listAuditLogs)
}
