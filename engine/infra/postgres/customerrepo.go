package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/customer/model"
	"github.com/compozy/defaultdesk/engine/customer/uc"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var customerColumns = []string{"id", "name", "industry", "region", "is_default", "created_at", "updated_at"}

// CustomerRepo implements the customer repository on PostgreSQL.
type CustomerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	query, args, err := squirrel.Insert("customers").
		Columns(customerColumns...).
		Values(c.ID, c.Name, c.Industry, c.Region, c.IsDefault, c.CreatedAt, c.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return uc.ErrNameExists
		}
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Get(ctx context.Context, id core.ID) (*model.Customer, error) {
	query, args, err := squirrel.Select(customerColumns...).
		From("customers").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var c model.Customer
	if err := pgxscan.Get(ctx, r.db, &c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepo) List(ctx context.Context, filter model.Filter) ([]*model.Customer, error) {
	sb := squirrel.Select(customerColumns...).From("customers")
	if name := strings.TrimSpace(filter.Name); name != "" {
		sb = sb.Where(squirrel.ILike{"name": "%" + escapeLike(name) + "%"})
	}
	if filter.IsDefault != nil {
		sb = sb.Where(squirrel.Eq{"is_default": *filter.IsDefault})
	}
	query, args, err := sb.OrderBy("name ASC").
		Suffix("LIMIT ? OFFSET ?", filter.Limit, filter.Offset).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var customers []*model.Customer
	if err := pgxscan.Select(ctx, r.db, &customers, query, args...); err != nil {
		return nil, fmt.Errorf("scanning customers: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	query, args, err := squirrel.Update("customers").
		Set("name", c.Name).
		Set("industry", c.Industry).
		Set("region", c.Region).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return uc.ErrNameExists
		}
		return fmt.Errorf("updating customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id core.ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uc.ErrCustomerInUse
		}
		return fmt.Errorf("deleting customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrCustomerNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
