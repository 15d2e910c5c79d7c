package uc

import (
	"errors"

	"github.com/compozy/defaultdesk/engine/core"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrAlreadyBootstrapped = errors.New("an admin user already exists")

	errBadCredentials  = errors.New("invalid credentials")
	errAccountDisabled = errors.New("account disabled")
)

func invalidCredentials() error {
	return core.NewError(errBadCredentials, core.ErrCodeInvalidCredentials, nil)
}

func accountDisabled() error {
	return core.NewError(errAccountDisabled, core.ErrCodeAccountDisabled, nil)
}
