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

type CreateUserInput struct {
	Email       string     `json:"email"        binding:"required,email"`
	DisplayName string     `json:"display_name"`
	Password    string     `json:"password"     binding:"required,min=8"`
	Role        model.Role `json:"role"`
}

type CreateUser struct {
	repo     Repository
	settings Settings
	actor    *model.Principal
	input    *CreateUserInput
}

func NewCreateUser(repo Repository, settings Settings, actor *model.Principal, input *CreateUserInput) *CreateUser {
	return &CreateUser{repo: repo, settings: settings, actor: actor, input: input}
}

func (uc *CreateUser) Execute(ctx context.Context) (*model.User, error) {
	if err := policy.Require(uc.actor, policy.ActionCreate, policy.Of(policy.KindUser)); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	role := uc.input.Role
	if role == "" {
		role = model.RoleOperator
	}
	if !role.Valid() {
		return nil, core.BadRequest(fmt.Errorf("%w: %q", model.ErrUnknownRole, role))
	}
	email := model.NormalizeEmail(uc.input.Email)
	if _, err := uc.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, core.Conflict(ErrEmailExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(uc.input.Password), uc.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	displayName := uc.input.DisplayName
	if displayName == "" {
		displayName = email
	}
	user := &model.User{
		ID:           core.MustNewID(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, core.Conflict(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info("User created", "user_id", user.ID, "role", user.Role, "by", uc.actor.ID())
	return user, nil
}
