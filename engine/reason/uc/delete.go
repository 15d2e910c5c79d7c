package uc

import (
	"context"
	"errors"
	"fmt"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
)

type Delete struct {
	repo     Repository
	actor    *authmodel.Principal
	reasonID core.ID
}

func NewDelete(repo Repository, actor *authmodel.Principal, reasonID core.ID) *Delete {
	return &Delete{repo: repo, actor: actor, reasonID: reasonID}
}

func (uc *Delete) Execute(ctx context.Context) (struct{}, error) {
	if err := policy.Require(uc.actor, policy.ActionDelete, policy.Of(policy.KindReason)); err != nil {
		return struct{}{}, err
	}
	err := uc.repo.Delete(ctx, uc.reasonID)
	switch {
	case err == nil:
	case errors.Is(err, ErrReasonNotFound):
		return struct{}{}, core.NotFound(err)
	case errors.Is(err, ErrReasonInUse):
		return struct{}{}, core.Conflict(err)
	default:
		return struct{}{}, fmt.Errorf("failed to delete reason: %w", err)
	}
	logger.FromContext(ctx).Info("Reason deleted", "reason_id", uc.reasonID, "by", uc.actor.ID())
	return struct{}{}, nil
}
