package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/compozy/defaultdesk/engine/stats/model"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// dimensionColumns whitelists the customer columns stats may group by.
var dimensionColumns = map[model.Dimension]string{
	model.DimensionIndustry: "c.industry",
	model.DimensionRegion:   "c.region",
}

type StatsRepo struct {
	db DB
}

func NewStatsRepo(db DB) *StatsRepo {
	return &StatsRepo{db: db}
}

func (r *StatsRepo) CountApproved(ctx context.Context, dim model.Dimension, window model.Window) ([]*model.Bucket, error) {
	column, ok := dimensionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownDimension, dim)
	}
	value := fmt.Sprintf("COALESCE(NULLIF(%s, ''), '%s')", column, model.Unset)
	query, args, err := squirrel.Select(value+" AS value").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE a.type = ?) AS default_count", reasonmodel.TypeDefault)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE a.type = ?) AS rebirth_count", reasonmodel.TypeRebirth)).
		From("applications a").
		Join("customers c ON c.id = a.customer_id").
		Where(squirrel.Eq{"a.status": appmodel.StatusApproved}).
		Where(squirrel.GtOrEq{"a.reviewed_at": window.Start}).
		Where(squirrel.Lt{"a.reviewed_at": window.End}).
		GroupBy(value).
		OrderBy("value ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stats query: %w", err)
	}
	var out []*model.Bucket
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scanning stats: %w", err)
	}
	return out, nil
}
