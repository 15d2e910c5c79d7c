package uc

import "errors"

var (
	ErrReasonNotFound = errors.New("reason not found")
	ErrReasonInUse    = errors.New("reason is referenced by applications")
)
