package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/compozy/defaultdesk/engine/reason/uc"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var reasonColumns = []string{"id", "type", "description", "enabled", "sort_order", "created_at"}

type ReasonRepo struct {
	db DB
}

func NewReasonRepo(db DB) *ReasonRepo {
	return &ReasonRepo{db: db}
}

func (r *ReasonRepo) Create(ctx context.Context, reason *model.Reason) error {
	query, args, err := squirrel.Insert("reasons").
		Columns(reasonColumns...).
		Values(reason.ID, reason.Type, reason.Description, reason.Enabled, reason.SortOrder, reason.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting reason: %w", err)
	}
	return nil
}

func (r *ReasonRepo) Get(ctx context.Context, id core.ID) (*model.Reason, error) {
	query, args, err := squirrel.Select(reasonColumns...).
		From("reasons").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var reason model.Reason
	if err := pgxscan.Get(ctx, r.db, &reason, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrReasonNotFound
		}
		return nil, fmt.Errorf("scanning reason: %w", err)
	}
	return &reason, nil
}

// List orders by type then sort_order, the order pick lists show.
func (r *ReasonRepo) List(ctx context.Context, filter model.Filter) ([]*model.Reason, error) {
	sb := squirrel.Select(reasonColumns...).From("reasons")
	if filter.Type != "" {
		sb = sb.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.EnabledOnly {
		sb = sb.Where(squirrel.Eq{"enabled": true})
	}
	query, args, err := sb.OrderBy("type ASC", "sort_order ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var reasons []*model.Reason
	if err := pgxscan.Select(ctx, r.db, &reasons, query, args...); err != nil {
		return nil, fmt.Errorf("scanning reasons: %w", err)
	}
	return reasons, nil
}

// Update never changes the type; applications already filed keep meaning
// what they meant.
func (r *ReasonRepo) Update(ctx context.Context, reason *model.Reason) error {
	query, args, err := squirrel.Update("reasons").
		Set("description", reason.Description).
		Set("enabled", reason.Enabled).
		Set("sort_order", reason.SortOrder).
		Where(squirrel.Eq{"id": reason.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrReasonNotFound
	}
	return nil
}

func (r *ReasonRepo) Delete(ctx context.Context, id core.ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reasons WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uc.ErrReasonInUse
		}
		return fmt.Errorf("deleting reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrReasonNotFound
	}
	return nil
}
