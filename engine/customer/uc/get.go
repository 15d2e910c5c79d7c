package uc

import (
	"context"
	"errors"
	"fmt"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/customer/model"
	"github.com/compozy/defaultdesk/engine/policy"
)

type Get struct {
	repo       Repository
	actor      *authmodel.Principal
	customerID core.ID
}

func NewGet(repo Repository, actor *authmodel.Principal, customerID core.ID) *Get {
	return &Get{repo: repo, actor: actor, customerID: customerID}
}

func (uc *Get) Execute(ctx context.Context) (*model.Customer, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindCustomer)); err != nil {
		return nil, err
	}
	customer, err := uc.repo.Get(ctx, uc.customerID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return customer, nil
}

type List struct {
	repo   Repository
	actor  *authmodel.Principal
	filter model.Filter
}

func NewList(repo Repository, actor *authmodel.Principal, filter model.Filter) *List {
	return &List{repo: repo, actor: actor, filter: filter}
}

func (uc *List) Execute(ctx context.Context) ([]*model.Customer, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindCustomer)); err != nil {
		return nil, err
	}
	filter := uc.filter
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	filter.Limit = min(filter.Limit, MaxPageSize)
	filter.Offset = max(filter.Offset, 0)
	customers, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
