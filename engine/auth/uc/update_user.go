package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UpdateUserInput changes only the fields that are present. Users are
// disabled through Active, never deleted.
type UpdateUserInput struct {
	DisplayName *string     `json:"display_name,omitempty"`
	Role        *model.Role `json:"role,omitempty"`
	Active      *bool       `json:"active,omitempty"`
	Password    *string     `json:"password,omitempty"     binding:"omitempty,min=8"`
}

type UpdateUser struct {
	repo     Repository
	settings Settings
	actor    *model.Principal
	userID   core.ID
	input    *UpdateUserInput
}

func NewUpdateUser(
	repo Repository,
	settings Settings,
	actor *model.Principal,
	userID core.ID,
	input *UpdateUserInput,
) *UpdateUser {
	return &UpdateUser{repo: repo, settings: settings, actor: actor, userID: userID, input: input}
}

func (uc *UpdateUser) Execute(ctx context.Context) (*model.User, error) {
	if err := policy.Require(uc.actor, policy.ActionEdit, policy.Of(policy.KindUser)); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetUserByID(ctx, uc.userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if uc.input.Role != nil {
		if !uc.input.Role.Valid() {
			return nil, core.BadRequest(fmt.Errorf("%w: %q", model.ErrUnknownRole, *uc.input.Role))
		}
		user.Role = *uc.input.Role
	}
	if uc.actor.ID() == user.ID && (user.Role != model.RoleAdmin || uc.input.Active != nil && !*uc.input.Active) {
		return nil, core.InvalidState("admins cannot demote or disable themselves", map[string]any{"user_id": user.ID})
	}
	if uc.input.DisplayName != nil {
		user.DisplayName = *uc.input.DisplayName
	}
	if uc.input.Active != nil {
		user.Active = *uc.input.Active
	}
	if uc.input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*uc.input.Password), uc.settings.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	logger.FromContext(ctx).Info(
		"User updated",
		"user_id", user.ID,
		"role", user.Role,
		"active", user.Active,
		"by", uc.actor.ID(),
	)
	return user, nil
}
