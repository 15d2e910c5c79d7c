package uc

import (
	"context"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/reason/model"
)

type Repository interface {
	Create(ctx context.Context, reason *model.Reason) error
	Get(ctx context.Context, id core.ID) (*model.Reason, error)
	List(ctx context.Context, filter model.Filter) ([]*model.Reason, error)
	Update(ctx context.Context, reason *model.Reason) error
	// Delete returns ErrReasonInUse while any application references the reason.
	Delete(ctx context.Context, id core.ID) error
}
