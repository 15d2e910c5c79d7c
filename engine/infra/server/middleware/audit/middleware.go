// Package audit records mutating HTTP requests in the audit trail and
// stamps every request context with the client IP used by entries.
package audit

import (
	"net/http"
	"time"

	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/auth/userctx"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/gin-gonic/gin"
)

// ClientIP carries the caller address into the request context.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClientIP(c.Request.Context(), c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Requests appends one HTTP entry per mutating request once the handler has
// answered. Reads are not recorded.
func Requests(sink audit.Sink, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		var actorID core.ID
		if p, ok := userctx.PrincipalFromContext(c.Request.Context()); ok {
			actorID = p.ID()
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		entry := audit.NewEntry(
			c.Request.Context(),
			actorID,
			c.Request.Method,
			audit.TargetHTTP,
			route,
			map[string]any{
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
				"latency_ms": time.Since(start).Milliseconds(),
			},
		)
		audit.Record(c.Request.Context(), sink, timeout, entry)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
