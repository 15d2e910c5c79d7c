package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/audit"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	notificationmodel "github.com/compozy/defaultdesk/engine/notification/model"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
)

type ReviewInput struct {
	Decision model.Decision `json:"decision" binding:"required"`
	Remark   *string        `json:"remark,omitempty"`
}

type Review struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
	input         *ReviewInput
}

func NewReview(deps *Deps, actor *authmodel.Principal, applicationID core.ID, input *ReviewInput) *Review {
	return &Review{deps: deps, actor: actor, applicationID: applicationID, input: input}
}

func (uc *Review) Execute(ctx context.Context) (*model.Application, error) {
	app, err := uc.review(ctx)
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.RecordReview(ctx, string(uc.input.Decision), err)
	}
	return app, err
}

// review checks the role before looking anything up, so a reviewer-less
// role learns nothing about which applications exist.
func (uc *Review) review(ctx context.Context) (*model.Application, error) {
	if err := policy.Require(uc.actor, policy.ActionReview, policy.Of(policy.KindApplication)); err != nil {
		return nil, err
	}
	decision, err := model.ParseDecision(string(uc.input.Decision))
	if err != nil {
		return nil, core.BadRequest(err)
	}
	var review *model.Review
	app, err := withApplicationLock(ctx, uc.deps, uc.applicationID,
		func(ctx context.Context) (*model.Application, error) {
			return core.WithTimeoutResult(ctx, "review application", uc.deps.Timeouts.Operation,
				func(ctx context.Context) (*model.Application, error) {
					return uc.deps.Repo.Review(ctx, uc.applicationID, func(current *model.Application) (*model.Review, error) {
						r, err := uc.decide(current, decision)
						review = r
						return r, err
					})
				})
		})
	if err != nil {
		switch {
		case errors.Is(err, ErrApplicationNotFound):
			return nil, core.NotFound(err)
		case errors.Is(err, ErrConcurrentReview):
			return nil, core.Conflict(err)
		case core.CodeOf(err) != "":
			return nil, err
		}
		return nil, fmt.Errorf("failed to review application: %w", err)
	}
	logger.FromContext(ctx).Info(
		"Application reviewed",
		"application_id", app.ID,
		"decision", decision,
		"customer_id", app.CustomerID,
		"by", uc.actor.ID(),
	)
	details := map[string]any{"decision": decision, "customer_id": app.CustomerID}
	if review != nil && review.CustomerDefault != nil {
		details["customer_is_default"] = *review.CustomerDefault
	}
	if uc.input.Remark != nil {
		details["remark"] = *uc.input.Remark
	}
	audit.Record(ctx, uc.deps.Audit, uc.deps.Timeouts.Operation, audit.NewEntry(
		ctx, uc.actor.ID(), audit.ActionReview, audit.TargetApplication, app.ID.String(), details,
	))
	return app, nil
}

func (uc *Review) decide(current *model.Application, decision model.Decision) (*model.Review, error) {
	if !current.Status.CanTransitionTo(decision) {
		return nil, core.InvalidTransition("application is no longer pending", map[string]any{
			"application_id": current.ID,
			"status":         current.Status,
		})
	}
	now := time.Now().UTC()
	review := &model.Review{
		Decision:   decision,
		ReviewedBy: uc.actor.ID(),
		ReviewedAt: now,
		Notification: &notificationmodel.Notification{
			ID:        core.MustNewID(),
			UserID:    current.CreatedBy,
			Content:   model.ReviewNotice(current.ID, decision),
			CreatedAt: now,
		},
	}
	if decision == model.StatusApproved {
		flag := current.Type.DefaultFlag()
		review.CustomerDefault = &flag
	}
	return review, nil
}
