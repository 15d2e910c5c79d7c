package uc

import (
	"context"
	"fmt"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/notification/model"
)

// List returns the caller's own notifications, newest first.
type List struct {
	repo  Repository
	actor *authmodel.Principal
	limit int
}

func NewList(repo Repository, actor *authmodel.Principal, limit int) *List {
	return &List{repo: repo, actor: actor, limit: limit}
}

func (uc *List) Execute(ctx context.Context) ([]*model.Notification, error) {
	if uc.actor == nil || uc.actor.User == nil {
		return nil, core.Forbidden("no authenticated actor")
	}
	limit := uc.limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out, err := uc.repo.ListForUser(ctx, uc.actor.ID(), min(limit, MaxListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}
