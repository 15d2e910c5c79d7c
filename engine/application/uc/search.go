package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/defaultdesk/engine/application/model"
	attachmentmodel "github.com/compozy/defaultdesk/engine/attachment/model"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
)

const (
	fallbackDefaultLimit = 50
	fallbackMaxLimit     = 200
)

type Search struct {
	deps   *Deps
	actor  *authmodel.Principal
	filter model.SearchFilter
}

func NewSearch(deps *Deps, actor *authmodel.Principal, filter model.SearchFilter) *Search {
	return &Search{deps: deps, actor: actor, filter: filter}
}

func (uc *Search) Execute(ctx context.Context) ([]*model.Summary, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindApplication)); err != nil {
		return nil, err
	}
	filter := uc.filter
	filter.CustomerName = strings.TrimSpace(filter.CustomerName)
	if filter.Status != "" {
		if _, err := model.ParseStatus(string(filter.Status)); err != nil {
			return nil, core.BadRequest(err)
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, core.BadRequest(fmt.Errorf("unknown type %q", filter.Type))
	}
	filter.Limit, filter.Offset = uc.bounds(filter.Limit, filter.Offset)
	rows, err := core.WithTimeoutResult(ctx, "search applications", uc.deps.Timeouts.Operation,
		func(ctx context.Context) ([]*model.Summary, error) {
			return uc.deps.Repo.Search(ctx, filter)
		})
	if err != nil {
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}
	return rows, nil
}

func (uc *Search) bounds(limit, offset int) (int, int) {
	def, maxLimit := uc.deps.DefaultLimit, uc.deps.MaxLimit
	if maxLimit <= 0 {
		maxLimit = fallbackMaxLimit
	}
	if def <= 0 {
		def = fallbackDefaultLimit
	}
	if limit <= 0 {
		limit = def
	}
	return min(limit, maxLimit), max(offset, 0)
}

// Detail is one application with its attachments in upload order.
type Detail struct {
	*model.Application
	Attachments []*attachmentmodel.Attachment `json:"attachments"`
}

type Get struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
}

func NewGet(deps *Deps, actor *authmodel.Principal, applicationID core.ID) *Get {
	return &Get{deps: deps, actor: actor, applicationID: applicationID}
}

func (uc *Get) Execute(ctx context.Context) (*Detail, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindApplication)); err != nil {
		return nil, err
	}
	app, err := core.WithTimeoutResult(ctx, "load application", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*model.Application, error) {
			return uc.deps.Repo.Get(ctx, uc.applicationID)
		})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, core.NotFound(err)
		}
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	detail := &Detail{Application: app, Attachments: []*attachmentmodel.Attachment{}}
	if uc.deps.Attachments == nil {
		return detail, nil
	}
	attachments, err := core.WithTimeoutResult(ctx, "list attachments", uc.deps.Timeouts.Operation,
		func(ctx context.Context) ([]*attachmentmodel.Attachment, error) {
			return uc.deps.Attachments.ListByApplication(ctx, app.ID)
		})
	if err != nil {
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	if attachments != nil {
		detail.Attachments = attachments
	}
	return detail, nil
}
