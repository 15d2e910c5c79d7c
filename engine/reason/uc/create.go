package uc

import (
	"context"
	"fmt"
	"strings"
	"time"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/compozy/defaultdesk/pkg/logger"
)

type CreateInput struct {
	Type        model.Type `json:"type"        binding:"required"`
	Description string     `json:"description" binding:"required"`
	Enabled     *bool      `json:"enabled,omitempty"`
	SortOrder   int        `json:"sort_order"`
}

type Create struct {
	repo  Repository
	actor *authmodel.Principal
	input *CreateInput
}

func NewCreate(repo Repository, actor *authmodel.Principal, input *CreateInput) *Create {
	return &Create{repo: repo, actor: actor, input: input}
}

func (uc *Create) Execute(ctx context.Context) (*model.Reason, error) {
	if err := policy.Require(uc.actor, policy.ActionCreate, policy.Of(policy.KindReason)); err != nil {
		return nil, err
	}
	if !uc.input.Type.Valid() {
		return nil, core.BadRequest(fmt.Errorf("%w: %q", model.ErrUnknownType, uc.input.Type))
	}
	description := strings.TrimSpace(uc.input.Description)
	if description == "" {
		return nil, core.BadRequest(fmt.Errorf("description is required"))
	}
	enabled := true
	if uc.input.Enabled != nil {
		enabled = *uc.input.Enabled
	}
	reason := &model.Reason{
		ID:          core.MustNewID(),
		Type:        uc.input.Type,
		Description: description,
		Enabled:     enabled,
		SortOrder:   uc.input.SortOrder,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, reason); err != nil {
		return nil, fmt.Errorf("failed to create reason: %w", err)
	}
	logger.FromContext(ctx).Info("Reason created", "reason_id", reason.ID, "type", reason.Type, "by", uc.actor.ID())
	return reason, nil
}
