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

type CreateInput struct {
	Name     string `json:"name"     binding:"required"`
	Industry string `json:"industry"`
	Region   string `json:"region"`
}

type Create struct {
	repo  Repository
	actor *authmodel.Principal
	input *CreateInput
}

func NewCreate(repo Repository, actor *authmodel.Principal, input *CreateInput) *Create {
	return &Create{repo: repo, actor: actor, input: input}
}

func (uc *Create) Execute(ctx context.Context) (*model.Customer, error) {
	if err := policy.Require(uc.actor, policy.ActionCreate, policy.Of(policy.KindCustomer)); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(uc.input.Name)
	if name == "" {
		return nil, core.BadRequest(fmt.Errorf("name is required"))
	}
	now := time.Now().UTC()
	customer := &model.Customer{
		ID:        core.MustNewID(),
		Name:      name,
		Industry:  strings.TrimSpace(uc.input.Industry),
		Region:    strings.TrimSpace(uc.input.Region),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, ErrNameExists) {
			return nil, core.Conflict(err)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	logger.FromContext(ctx).Info("Customer created", "customer_id", customer.ID, "by", uc.actor.ID())
	return customer, nil
}
