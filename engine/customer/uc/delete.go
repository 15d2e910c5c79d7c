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
	repo       Repository
	actor      *authmodel.Principal
	customerID core.ID
}

func NewDelete(repo Repository, actor *authmodel.Principal, customerID core.ID) *Delete {
	return &Delete{repo: repo, actor: actor, customerID: customerID}
}

func (uc *Delete) Execute(ctx context.Context) (struct{}, error) {
	if err := policy.Require(uc.actor, policy.ActionDelete, policy.Of(policy.KindCustomer)); err != nil {
		return struct{}{}, err
	}
	err := uc.repo.Delete(ctx, uc.customerID)
	switch {
	case err == nil:
	case errors.Is(err, ErrCustomerNotFound):
		return struct{}{}, core.NotFound(err)
	case errors.Is(err, ErrCustomerInUse):
		return struct{}{}, core.Conflict(err)
	default:
		return struct{}{}, fmt.Errorf("failed to delete customer: %w", err)
	}
	logger.FromContext(ctx).Info("Customer deleted", "customer_id", uc.customerID, "by", uc.actor.ID())
	return struct{}{}, nil
}
