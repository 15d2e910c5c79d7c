package router

import (
	"encoding/json"
	"net/http"

	"github.com/compozy/defaultdesk/engine/auth/userctx"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

const problemContentType = "application/problem+json"

// RespondProblem writes a canonical RFC 7807 error response.
func RespondProblem(c *gin.Context, problem *core.Problem) {
	prepared := core.NormalizeProblem(problem)
	body := core.BuildProblemBody(prepared)
	writeProblemResponse(c, prepared, body)
}

// RespondProblemWithCode writes a problem response embedding a code and detail.
func RespondProblemWithCode(c *gin.Context, status int, code string, detail string) {
	RespondProblem(c, &core.Problem{
		Status: status,
		Title:  http.StatusText(status),
		Detail: detail,
		Code:   code,
	})
}

func writeProblemResponse(c *gin.Context, problem *core.Problem, body map[string]any) {
	logProblem(c, problem)
	payload, err := json.Marshal(body)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to marshal problem", "error", err)
		fallback := []byte(`{"status":500,"error":"Internal Server Error"}`)
		c.Data(http.StatusInternalServerError, problemContentType, fallback)
		c.Abort()
		return
	}
	c.Data(problem.Status, problemContentType, payload)
	c.Abort()
}

// logProblem adds the problem detail to the request log. The request logger
// already reports 4xx at warn, so client errors only appear at debug here.
func logProblem(c *gin.Context, problem *core.Problem) {
	log := logger.FromContext(c.Request.Context())
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []any{"status", problem.Status, "code", problem.Code, "detail", problem.Detail, "route", route}
	if principal, ok := userctx.PrincipalFromContext(c.Request.Context()); ok {
		fields = append(fields, "user_id", principal.ID(), "role", principal.User.Role)
	}
	if problem.Status >= http.StatusInternalServerError {
		log.Error("Request failed with a server error", fields...)
		return
	}
	log.Debug("Problem returned", fields...)
}
