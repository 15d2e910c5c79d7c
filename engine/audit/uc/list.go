package uc

import (
	"context"
	"fmt"

	"github.com/compozy/defaultdesk/engine/audit"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
)

type List struct {
	sink   audit.Sink
	actor  *authmodel.Principal
	filter audit.Filter
}

func NewList(sink audit.Sink, actor *authmodel.Principal, filter audit.Filter) *List {
	return &List{sink: sink, actor: actor, filter: filter}
}

func (uc *List) Execute(ctx context.Context) ([]*audit.Entry, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindAuditLog)); err != nil {
		return nil, err
	}
	filter := uc.filter
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, core.BadRequest(fmt.Errorf("end must not be before start"))
	}
	if filter.Limit <= 0 {
		filter.Limit = audit.DefaultListLimit
	}
	filter.Limit = min(filter.Limit, audit.MaxListLimit)
	entries, err := uc.sink.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
