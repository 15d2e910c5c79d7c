package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/audit"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// Delete removes an application. The customer flag an approval set stays as
// it is; the audit entry says so explicitly.
type Delete struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
}

func NewDelete(deps *Deps, actor *authmodel.Principal, applicationID core.ID) *Delete {
	return &Delete{deps: deps, actor: actor, applicationID: applicationID}
}

func (uc *Delete) Execute(ctx context.Context) (*model.Application, error) {
	if err := policy.Require(uc.actor, policy.ActionDelete, policy.Of(policy.KindApplication)); err != nil {
		return nil, err
	}
	deleted, err := withApplicationLock(ctx, uc.deps, uc.applicationID,
		func(ctx context.Context) (*model.Application, error) {
			return core.WithTimeoutResult(ctx, "delete application", uc.deps.Timeouts.Operation,
				func(ctx context.Context) (*model.Application, error) {
					return uc.deps.Repo.Delete(ctx, uc.applicationID)
				})
		})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, core.NotFound(err)
		}
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete application: %w", err)
	}
	logger.FromContext(ctx).Info(
		"Application deleted",
		"application_id", deleted.ID,
		"status", deleted.Status,
		"by", uc.actor.ID(),
	)
	audit.Record(ctx, uc.deps.Audit, uc.deps.Timeouts.Operation, audit.NewEntry(
		ctx, uc.actor.ID(), audit.ActionDelete, audit.TargetApplication, deleted.ID.String(),
		map[string]any{
			"status":                 deleted.Status,
			"type":                   deleted.Type,
			"customer_id":            deleted.CustomerID,
			"customer_flag_reverted": false,
		},
	))
	return deleted, nil
}
