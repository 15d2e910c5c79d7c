package core

import (
	"errors"
	"fmt"
)

// Error codes shared by every use case. The HTTP layer maps them to statuses.
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ACCOUNT_DISABLED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeBadRequest         = "BAD_REQUEST"
)

// Error is a coded failure returned across package boundaries.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func NewError(err error, code string, details map[string]any) *Error {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: code, Message: msg, Details: details, Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the outermost *Error in the chain, or "".
func CodeOf(err error) string {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Code
	}
	return ""
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Constructors keep call sites short.

func Forbidden(msg string) *Error {
	return &Error{Code: ErrCodeForbidden, Message: msg}
}

func NotFound(err error) *Error {
	return NewError(err, ErrCodeNotFound, nil)
}

func InvalidState(msg string, details map[string]any) *Error {
	return &Error{Code: ErrCodeInvalidState, Message: msg, Details: details}
}

func InvalidTransition(msg string, details map[string]any) *Error {
	return &Error{Code: ErrCodeInvalidTransition, Message: msg, Details: details}
}

func Conflict(err error) *Error {
	return NewError(err, ErrCodeConflict, nil)
}

func BadRequest(err error) *Error {
	return NewError(err, ErrCodeBadRequest, nil)
}
