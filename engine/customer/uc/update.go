package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/customer/model"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// UpdateInput accepts is_default only to refuse it explicitly instead of
// silently dropping it.
type UpdateInput struct {
	Name      *string `json:"name,omitempty"`
	Industry  *string `json:"industry,omitempty"`
	Region    *string `json:"region,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

type Update struct {
	repo       Repository
	actor      *authmodel.Principal
	customerID core.ID
	input      *UpdateInput
}

func NewUpdate(repo Repository, actor *authmodel.Principal, customerID core.ID, input *UpdateInput) *Update {
	return &Update{repo: repo, actor: actor, customerID: customerID, input: input}
}

func (uc *Update) Execute(ctx context.Context) (*model.Customer, error) {
	if err := policy.Require(uc.actor, policy.ActionEdit, policy.Of(policy.KindCustomer)); err != nil {
		return nil, err
	}
	if uc.input.IsDefault != nil {
		return nil, core.InvalidState("is_default changes only through approved applications", map[string]any{
			"customer_id": uc.customerID,
		})
	}
	customer, err := uc.repo.Get(ctx, uc.customerID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if uc.input.Name != nil {
		name := strings.TrimSpace(*uc.input.Name)
		if name == "" {
			return nil, core.BadRequest(fmt.Errorf("name cannot be empty"))
		}
		customer.Name = name
	}
	if uc.input.Industry != nil {
		customer.Industry = strings.TrimSpace(*uc.input.Industry)
	}
	if uc.input.Region != nil {
		customer.Region = strings.TrimSpace(*uc.input.Region)
	}
	customer.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, customer); err != nil {
		switch {
		case errors.Is(err, ErrCustomerNotFound):
			return nil, core.NotFound(err)
		case errors.Is(err, ErrNameExists):
			return nil, core.Conflict(err)
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	logger.FromContext(ctx).Info("Customer updated", "customer_id", customer.ID, "by", uc.actor.ID())
	return customer, nil
}
