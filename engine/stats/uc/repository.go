package uc

import (
	"context"

	"github.com/compozy/defaultdesk/engine/stats/model"
)

type Repository interface {
	// CountApproved groups APPROVED applications reviewed inside window by the
	// customer's dimension value, empty values reported as model.Unset.
	CountApproved(ctx context.Context, dim model.Dimension, window model.Window) ([]*model.Bucket, error)
}
