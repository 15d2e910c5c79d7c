package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// touchSem bounds the background last-used updates.
var touchSem = make(chan struct{}, 10)

// ResolveSession turns a bearer token into the current principal. The user
// row is read on every call so role and active changes apply immediately.
type ResolveSession struct {
	repo  Repository
	token string
	now   func() time.Time
}

func NewResolveSession(repo Repository, token string) *ResolveSession {
	return &ResolveSession{repo: repo, token: token, now: time.Now}
}

func (uc *ResolveSession) Execute(ctx context.Context) (*model.Principal, error) {
	log := logger.FromContext(ctx)
	if !strings.HasPrefix(uc.token, model.SessionTokenPrefix) {
		return nil, invalidCredentials()
	}
	session, err := uc.repo.GetSessionByFingerprint(ctx, Fingerprint(uc.token))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	now := uc.now().UTC()
	if !session.Usable(now) {
		log.Debug("Session expired or revoked", "session_id", session.ID)
		return nil, invalidCredentials()
	}
	user, err := uc.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if !user.Active {
		return nil, accountDisabled()
	}
	role, err := model.ParseRole(string(user.Role))
	if err != nil {
		log.Error("Stored role is not recognized", "user_id", user.ID, "error", err)
		return nil, invalidCredentials()
	}
	user.Role = role
	uc.touch(ctx, session, now)
	return &model.Principal{User: user, SessionID: session.ID}, nil
}

func (uc *ResolveSession) touch(ctx context.Context, session *model.Session, now time.Time) {
	if session.LastUsed.Valid && now.Sub(session.LastUsed.Time) < time.Minute {
		return
	}
	select {
	case touchSem <- struct{}{}:
		go func() {
			defer func() { <-touchSem }()
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := uc.repo.TouchSession(bgCtx, session.ID, now); err != nil {
				logger.FromContext(bgCtx).Warn("Failed to update session last used", "error", err, "session_id", session.ID)
			}
		}()
	default:
		logger.FromContext(ctx).Debug("Skipping session touch under load", "session_id", session.ID)
	}
}
