package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapAdmin seeds the first admin account. It is a no-op once any admin exists.
type BootstrapAdmin struct {
	repo     Repository
	settings Settings
	email    string
	password string
}

func NewBootstrapAdmin(repo Repository, settings Settings, email, password string) *BootstrapAdmin {
	return &BootstrapAdmin{repo: repo, settings: settings, email: email, password: password}
}

// Execute returns the created admin, or nil when one already existed.
func (uc *BootstrapAdmin) Execute(ctx context.Context) (*model.User, error) {
	log := logger.FromContext(ctx)
	if uc.email == "" || uc.password == "" {
		return nil, errors.New("bootstrap admin requires an email and a password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(uc.password), uc.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	email := model.NormalizeEmail(uc.email)
	user := &model.User{
		ID:           core.MustNewID(),
		Email:        email,
		DisplayName:  "Administrator",
		Role:         model.RoleAdmin,
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.CreateInitialAdminIfNone(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyBootstrapped) {
			log.Debug("Admin already present, skipping bootstrap")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	log.Warn("Bootstrapped default admin; change its password", "email", email)
	return user, nil
}
