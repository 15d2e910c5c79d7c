package core

import (
	"maps"
	"net/http"
)

// ProblemDocument is the error envelope returned by every endpoint.
type ProblemDocument struct {
	Status  int    `json:"status"            example:"409"`
	Error   string `json:"error"             example:"Conflict"`
	Details string `json:"details,omitempty" example:"application is no longer pending"`
	Code    string `json:"code,omitempty"    example:"INVALID_TRANSITION"`
}

// Problem captures an RFC 7807 response before serialization.
type Problem struct {
	Title  string
	Status int
	Detail string
	Code   string
	Extras map[string]any
}

var codeStatus = map[string]int{
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDisabled:    http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInvalidState:       http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidTransition:  http.StatusConflict,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
}

// StatusForCode maps an error code to its HTTP status. Unknown codes are 500.
func StatusForCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func NormalizeProblem(problem *Problem) *Problem {
	if problem == nil {
		problem = &Problem{}
	}
	if problem.Status == 0 {
		problem.Status = http.StatusInternalServerError
	}
	if problem.Title == "" {
		problem.Title = http.StatusText(problem.Status)
	}
	return problem
}

func BuildProblemBody(problem *Problem) map[string]any {
	body := map[string]any{
		"status": problem.Status,
		"error":  problem.Title,
	}
	if problem.Detail != "" {
		body["details"] = problem.Detail
	}
	if problem.Code != "" {
		body["code"] = problem.Code
	}
	extras := make(map[string]any, len(problem.Extras))
	for key, value := range problem.Extras {
		switch key {
		case "status", "error", "details", "code":
			continue
		}
		extras[key] = value
	}
	maps.Copy(body, extras)
	return body
}
