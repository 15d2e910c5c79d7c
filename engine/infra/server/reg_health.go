package server

import (
	"context"
	"net/http"
	"time"

	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthChecker reports each dependency by name; nil means healthy.
type HealthChecker func(ctx context.Context) map[string]error

// Health endpoint
//
//	@Summary		Get server health
//	@Description	Pings the database, the audit store and redis when configured
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Service is healthy"
//	@Failure		503	{object}	map[string]interface{}	"A dependency is unreachable"
//	@Router			/health [get]
func CreateHealthHandler(check HealthChecker, version string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		status := statusHealthy
		components := gin.H{}
		for name, err := range check(ctx) {
			if err != nil {
				logger.FromContext(ctx).Warn("Health check failed", "component", name, "error", err)
				status = statusUnhealthy
				components[name] = gin.H{"healthy": false, "error": err.Error()}
				continue
			}
			components[name] = gin.H{"healthy": true}
		}
		code := http.StatusOK
		if status != statusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"data": gin.H{
				"status":     status,
				"version":    version,
				"components": components,
			},
			"message": "Success",
		})
	}
}
