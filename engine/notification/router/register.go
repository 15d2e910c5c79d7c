package notificationrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	notificationsGroup := apiBase.Group("/notifications")
	{
		notificationsGroup.GET("", listNotifications)
		notificationsGroup.POST("/:id/read", markNotificationRead)
	}
}
