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

// IssuedSession is returned once at login; Token is never stored.
type IssuedSession struct {
	Token   string
	Session *model.Session
	User    *model.User
}

type Authenticate struct {
	repo     Repository
	settings Settings
	email    string
	password string
	now      func() time.Time
}

func NewAuthenticate(repo Repository, settings Settings, email, password string) *Authenticate {
	return &Authenticate{
		repo:     repo,
		settings: settings,
		email:    email,
		password: password,
		now:      time.Now,
	}
}

// Execute verifies the credentials and opens a session. Unknown users, wrong
// passwords and unusable roles all fail with INVALID_CREDENTIALS.
func (uc *Authenticate) Execute(ctx context.Context) (*IssuedSession, error) {
	log := logger.FromContext(ctx)
	user, err := uc.repo.GetUserByEmail(ctx, model.NormalizeEmail(uc.email))
	if err != nil {
		//nolint:errcheck // equalizes timing with the found-user path
		_ = bcrypt.CompareHashAndPassword(dummyBcryptHash, []byte(uc.password))
		if errors.Is(err, ErrUserNotFound) {
			log.Debug("Login for unknown email")
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(uc.password)); err != nil {
		log.Debug("Password mismatch", "user_id", user.ID)
		return nil, invalidCredentials()
	}
	if !user.Active {
		log.Info("Login refused for disabled account", "user_id", user.ID)
		return nil, accountDisabled()
	}
	role, err := model.ParseRole(string(user.Role))
	if err != nil {
		log.Error("Stored role is not recognized", "user_id", user.ID, "error", err)
		return nil, invalidCredentials()
	}
	user.Role = role

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	session := &model.Session{
		ID:          core.MustNewID(),
		UserID:      user.ID,
		Fingerprint: Fingerprint(token),
		Prefix:      model.SessionTokenPrefix,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.settings.SessionTTL),
	}
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Info("Session issued", "user_id", user.ID, "session_id", session.ID)
	return &IssuedSession{Token: token, Session: session, User: user}, nil
}
