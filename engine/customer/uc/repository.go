package uc

import (
	"context"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/customer/model"
)

type Repository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Get(ctx context.Context, id core.ID) (*model.Customer, error)
	List(ctx context.Context, filter model.Filter) ([]*model.Customer, error)
	// Update writes name, industry and region. It never touches is_default.
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id core.ID) error
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)
