package statsrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	statsGroup := apiBase.Group("/stats")
	{
		statsGroup.GET("/industry", industryStats)
		statsGroup.GET("/region", regionStats)
		statsGroup.GET("/summary", summaryStats)
	}
}
