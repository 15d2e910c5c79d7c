package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/audit"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	customermodel "github.com/compozy/defaultdesk/engine/customer/model"
	customeruc "github.com/compozy/defaultdesk/engine/customer/uc"
	"github.com/compozy/defaultdesk/engine/policy"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	reasonuc "github.com/compozy/defaultdesk/engine/reason/uc"
	"github.com/compozy/defaultdesk/pkg/logger"
)

type CreateInput struct {
	Type       reasonmodel.Type `json:"type"        binding:"required"`
	CustomerID core.ID          `json:"customer_id" binding:"required"`
	ReasonID   core.ID          `json:"reason_id"   binding:"required"`
	Rating     *string          `json:"rating,omitempty"`
	Severity   *model.Severity  `json:"severity,omitempty"`
	Remark     *string          `json:"remark,omitempty"`
}

type Create struct {
	deps  *Deps
	actor *authmodel.Principal
	input *CreateInput
}

func NewCreate(deps *Deps, actor *authmodel.Principal, input *CreateInput) *Create {
	return &Create{deps: deps, actor: actor, input: input}
}

func (uc *Create) Execute(ctx context.Context) (*model.Application, error) {
	if err := policy.Require(uc.actor, policy.ActionCreate, policy.Of(policy.KindApplication)); err != nil {
		return nil, err
	}
	if !uc.input.Type.Valid() {
		return nil, core.BadRequest(fmt.Errorf("%w: %q", reasonmodel.ErrUnknownType, uc.input.Type))
	}
	reason, err := uc.loadReason(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkReason(reason, uc.input.Type); err != nil {
		return nil, err
	}
	customer, err := uc.loadCustomer(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkCustomerFlag(customer, uc.input.Type); err != nil {
		return nil, err
	}
	app := &model.Application{
		ID:         core.MustNewID(),
		Type:       uc.input.Type,
		CustomerID: customer.ID,
		ReasonID:   reason.ID,
		Rating:     trimmedOrNil(uc.input.Rating),
		Severity:   uc.input.Severity,
		Remark:     trimmedOrNil(uc.input.Remark),
		Status:     model.StatusPending,
		CreatedBy:  uc.actor.ID(),
		CreatedAt:  time.Now().UTC(),
	}
	err = core.WithTimeout(ctx, "insert application", uc.deps.Timeouts.Operation, func(ctx context.Context) error {
		return uc.deps.Repo.Create(ctx, app)
	})
	if err != nil {
		if errors.Is(err, ErrReferenceMissing) {
			return nil, core.NotFound(err)
		}
		if errors.Is(err, ErrCustomerFlagChanged) {
			return nil, core.InvalidState("customer default flag changed, reload and retry", map[string]any{
				"customer_id": app.CustomerID,
				"type":        app.Type,
			})
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	logger.FromContext(ctx).Info(
		"Application created",
		"application_id", app.ID,
		"type", app.Type,
		"customer_id", app.CustomerID,
		"by", uc.actor.ID(),
	)
	audit.Record(ctx, uc.deps.Audit, uc.deps.Timeouts.Operation, audit.NewEntry(
		ctx, uc.actor.ID(), audit.ActionCreate, audit.TargetApplication, app.ID.String(),
		map[string]any{"type": app.Type, "customer_id": app.CustomerID, "reason_id": app.ReasonID},
	))
	return app, nil
}

func (uc *Create) loadReason(ctx context.Context) (*reasonmodel.Reason, error) {
	reason, err := core.WithTimeoutResult(ctx, "load reason", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*reasonmodel.Reason, error) {
			return uc.deps.Reasons.Get(ctx, uc.input.ReasonID)
		})
	if err != nil {
		if errors.Is(err, reasonuc.ErrReasonNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load reason: %w", err)
	}
	return reason, nil
}

func (uc *Create) loadCustomer(ctx context.Context) (*customermodel.Customer, error) {
	customer, err := core.WithTimeoutResult(ctx, "load customer", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*customermodel.Customer, error) {
			return uc.deps.Customers.Get(ctx, uc.input.CustomerID)
		})
	if err != nil {
		if errors.Is(err, customeruc.ErrCustomerNotFound) {
			return nil, core.NotFound(err)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return customer, nil
}

func checkReason(reason *reasonmodel.Reason, typ reasonmodel.Type) error {
	if !reason.Enabled {
		return core.InvalidState("reason is disabled", map[string]any{"reason_id": reason.ID})
	}
	if reason.Type != typ {
		return core.InvalidState("reason type does not match application type", map[string]any{
			"reason_id":   reason.ID,
			"reason_type": reason.Type,
			"type":        typ,
		})
	}
	return nil
}

// checkCustomerFlag refuses DEFAULT for a customer already in default and
// REBIRTH for one that is not.
func checkCustomerFlag(customer *customermodel.Customer, typ reasonmodel.Type) error {
	if customer.IsDefault == typ.RequiredFlag() {
		return nil
	}
	msg := "customer is already in default"
	if typ == reasonmodel.TypeRebirth {
		msg = "customer is not in default"
	}
	return core.InvalidState(msg, map[string]any{
		"customer_id": customer.ID,
		"is_default":  customer.IsDefault,
		"type":        typ,
	})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
