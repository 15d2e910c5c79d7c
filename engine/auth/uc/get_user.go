package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
)

type GetUser struct {
	repo   Repository
	actor  *model.Principal
	userID core.ID
}

func NewGetUser(repo Repository, actor *model.Principal, userID core.ID) *GetUser {
	return &GetUser{repo: repo, actor: actor, userID: userID}
}

func (uc *GetUser) Execute(ctx context.Context) (*model.User, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindUser)); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetUserByID(ctx, uc.userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

type ListUsers struct {
	repo  Repository
	actor *model.Principal
}

func NewListUsers(repo Repository, actor *model.Principal) *ListUsers {
	return &ListUsers{repo: repo, actor: actor}
}

func (uc *ListUsers) Execute(ctx context.Context) ([]*model.User, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindUser)); err != nil {
		return nil, err
	}
	users, err := uc.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
