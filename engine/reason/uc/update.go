package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// UpdateInput changes only the fields that are present. The type is fixed at
// creation because existing applications were validated against it.
type UpdateInput struct {
	Type        *model.Type `json:"type,omitempty"`
	Description *string     `json:"description,omitempty"`
	Enabled     *bool       `json:"enabled,omitempty"`
	SortOrder   *int        `json:"sort_order,omitempty"`
}

type Update struct {
	repo     Repository
	actor    *authmodel.Principal
	reasonID core.ID
	input    *UpdateInput
}

func NewUpdate(repo Repository, actor *authmodel.Principal, reasonID core.ID, input *UpdateInput) *Update {
	return &Update{repo: repo, actor: actor, reasonID: reasonID, input: input}
}

func (uc *Update) Execute(ctx context.Context) (*model.Reason, error) {
	if err := policy.Require(uc.actor, policy.ActionEdit, policy.Of(policy.KindReason)); err != nil {
		return nil, err
	}
	reason, err := uc.repo.Get(ctx, uc.reasonID)
	if err != nil {
		if errors.Is(err, ErrReasonNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load reason: %w", err)
	}
	if uc.input.Type != nil && *uc.input.Type != reason.Type {
		return nil, core.InvalidState("reason type cannot change", map[string]any{
			"reason_id": reason.ID,
			"type":      reason.Type,
		})
	}
	if uc.input.Description != nil {
		description := strings.TrimSpace(*uc.input.Description)
		if description == "" {
			return nil, core.BadRequest(fmt.Errorf("description cannot be empty"))
		}
		reason.Description = description
	}
	if uc.input.Enabled != nil {
		reason.Enabled = *uc.input.Enabled
	}
	if uc.input.SortOrder != nil {
		reason.SortOrder = *uc.input.SortOrder
	}
	if err := uc.repo.Update(ctx, reason); err != nil {
		if errors.Is(err, ErrReasonNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to update reason: %w", err)
	}
	logger.FromContext(ctx).Info("Reason updated", "reason_id", reason.ID, "by", uc.actor.ID())
	return reason, nil
}
