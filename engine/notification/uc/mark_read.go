package uc

import (
	"context"
	"errors"
	"fmt"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
)

type MarkRead struct {
	repo           Repository
	actor          *authmodel.Principal
	notificationID core.ID
}

func NewMarkRead(repo Repository, actor *authmodel.Principal, notificationID core.ID) *MarkRead {
	return &MarkRead{repo: repo, actor: actor, notificationID: notificationID}
}

func (uc *MarkRead) Execute(ctx context.Context) (struct{}, error) {
	if uc.actor == nil || uc.actor.User == nil {
		return struct{}{}, core.Forbidden("no authenticated actor")
	}
	if err := uc.repo.MarkRead(ctx, uc.notificationID, uc.actor.ID()); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return struct{}{}, core.NotFound(err)
		}
		return struct{}{}, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return struct{}{}, nil
}
