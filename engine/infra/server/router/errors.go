package router

import (
	"errors"
	"net/http"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthenticated = errors.New("missing or invalid credentials")
	ErrInternal        = errors.New("internal server error")
)

const (
	ErrMsgAppStateNotInitialized = "application state not initialized"
	// credentialsDetail is shared by every 401 so callers cannot tell an
	// unknown account from a disabled one.
	credentialsDetail = "invalid credentials"
)

// RespondWithError maps err to a problem document. Coded errors keep their
// message; anything else is logged and reported as a bare 500.
func RespondWithError(c *gin.Context, err error) {
	if core.CodeOf(err) == "" {
		logger.FromContext(c.Request.Context()).Error("Request failed with internal error", "error", err)
	}
	RespondProblem(c, ProblemFromError(err))
}

func ProblemFromError(err error) *core.Problem {
	code := core.CodeOf(err)
	status := core.StatusForCode(code)
	switch {
	case code == "":
		return &core.Problem{Status: http.StatusInternalServerError, Detail: ErrInternal.Error()}
	case status == http.StatusUnauthorized:
		return &core.Problem{Status: status, Detail: credentialsDetail, Code: core.ErrCodeInvalidCredentials}
	}
	problem := &core.Problem{Status: status, Detail: messageOf(err), Code: code}
	var coreErr *core.Error
	if errors.As(err, &coreErr) && len(coreErr.Details) > 0 {
		problem.Extras = coreErr.Details
	}
	return problem
}

func messageOf(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr.Message != "" {
		return coreErr.Message
	}
	return err.Error()
}
