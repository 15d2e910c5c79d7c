package uc

import (
	"context"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
)

// Repository is the persistence surface of the identity domain.
type Repository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id core.ID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	// CreateInitialAdminIfNone inserts user only while no admin exists.
	// Returns ErrAlreadyBootstrapped otherwise.
	CreateInitialAdminIfNone(ctx context.Context, user *model.User) error

	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByFingerprint(ctx context.Context, fingerprint []byte) (*model.Session, error)
	TouchSession(ctx context.Context, id core.ID, at time.Time) error
	RevokeSession(ctx context.Context, fingerprint []byte) error
}

// Settings carries the identity knobs read from configuration.
type Settings struct {
	SessionTTL time.Duration
	BcryptCost int
}
