package uc

import (
	"context"
	"fmt"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/engine/reason/model"
)

type List struct {
	repo   Repository
	actor  *authmodel.Principal
	filter model.Filter
}

func NewList(repo Repository, actor *authmodel.Principal, filter model.Filter) *List {
	return &List{repo: repo, actor: actor, filter: filter}
}

func (uc *List) Execute(ctx context.Context) ([]*model.Reason, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindReason)); err != nil {
		return nil, err
	}
	reasons, err := uc.repo.List(ctx, uc.filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reasons: %w", err)
	}
	return reasons, nil
}
