package uc

import (
	"context"
	"errors"
	"fmt"
)

type Logout struct {
	repo  Repository
	token string
}

func NewLogout(repo Repository, token string) *Logout {
	return &Logout{repo: repo, token: token}
}

func (uc *Logout) Execute(ctx context.Context) (struct{}, error) {
	if err := uc.repo.RevokeSession(ctx, Fingerprint(uc.token)); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return struct{}{}, invalidCredentials()
		}
		return struct{}{}, fmt.Errorf("failed to revoke session: %w", err)
	}
	return struct{}{}, nil
}
