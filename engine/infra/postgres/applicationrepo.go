package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

var applicationColumns = []string{
	"id", "type", "customer_id", "reason_id", "rating", "severity", "remark",
	"status", "created_by", "reviewed_by", "created_at", "reviewed_at",
}

const applicationColumnsSQL = "id, type, customer_id, reason_id, rating, severity, remark, " +
	"status, created_by, reviewed_by, created_at, reviewed_at"

// ApplicationRepo persists the workflow. Create and Review are the
// multi-statement operations and each runs in one transaction.
type ApplicationRepo struct {
	db DB
}

func NewApplicationRepo(db DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// Create re-reads the customer flag under a share lock before inserting, so
// an approval that flips it either commits first and is seen here, or waits
// for this insert.
func (r *ApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	query, args, err := squirrel.Insert("applications").
		Columns(applicationColumns...).
		Values(
			app.ID, app.Type, app.CustomerID, app.ReasonID, app.Rating, app.Severity, app.Remark,
			app.Status, app.CreatedBy, app.ReviewedBy, app.CreatedAt, app.ReviewedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var isDefault bool
		err := tx.QueryRow(ctx,
			`SELECT is_default FROM customers WHERE id = $1 FOR SHARE`, app.CustomerID,
		).Scan(&isDefault)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uc.ErrReferenceMissing
			}
			return fmt.Errorf("locking customer: %w", err)
		}
		if isDefault != app.Type.RequiredFlag() {
			return uc.ErrCustomerFlagChanged
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return uc.ErrReferenceMissing
			}
			return fmt.Errorf("inserting application: %w", err)
		}
		return nil
	})
}

func (r *ApplicationRepo) Get(ctx context.Context, id core.ID) (*model.Application, error) {
	return getApplication(ctx, r.db, id, "")
}

// getApplication reads one row, optionally with a row lock clause such as
// "FOR SHARE".
func getApplication(ctx context.Context, q pgxscan.Querier, id core.ID, lock string) (*model.Application, error) {
	sb := squirrel.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"id": id})
	if lock != "" {
		sb = sb.Suffix(lock)
	}
	query, args, err := sb.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var app model.Application
	if err := pgxscan.Get(ctx, q, &app, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepo) Search(ctx context.Context, filter model.SearchFilter) ([]*model.Summary, error) {
	sb := squirrel.Select(
		"a.id", "a.type", "a.customer_id", "a.reason_id", "a.rating", "a.severity", "a.remark",
		"a.status", "a.created_by", "a.reviewed_by", "a.created_at", "a.reviewed_at",
		"c.name AS customer_name", "r.description AS reason_description",
	).
		From("applications a").
		Join("customers c ON c.id = a.customer_id").
		Join("reasons r ON r.id = a.reason_id")
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		sb = sb.Where(squirrel.ILike{"c.name": "%" + escapeLike(name) + "%"})
	}
	if filter.Status != "" {
		sb = sb.Where(squirrel.Eq{"a.status": filter.Status})
	}
	if filter.Type != "" {
		sb = sb.Where(squirrel.Eq{"a.type": filter.Type})
	}
	query, args, err := sb.OrderBy("a.created_at DESC", "a.id DESC").
		Suffix("LIMIT ? OFFSET ?", filter.Limit, filter.Offset).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}
	var rows []*model.Summary
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning applications: %w", err)
	}
	return rows, nil
}

// Review reads the row, lets decide pick the change and applies it guarded
// by status = PENDING. The guard, not the read, is what serializes racing
// reviewers: the loser updates zero rows and gets ErrConcurrentReview.
func (r *ApplicationRepo) Review(ctx context.Context, id core.ID, decide uc.DecideFunc) (*model.Application, error) {
	var out *model.Application
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		current, err := getApplication(ctx, tx, id, "")
		if err != nil {
			return err
		}
		review, err := decide(current)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE applications SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1 AND status = $5`,
			id, review.Decision, review.ReviewedBy, review.ReviewedAt, model.StatusPending,
		)
		if err != nil {
			return fmt.Errorf("updating application status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return uc.ErrConcurrentReview
		}
		if review.CustomerDefault != nil {
			if err := setCustomerDefault(ctx, tx, current.CustomerID, *review.CustomerDefault, review.ReviewedAt); err != nil {
				return err
			}
		}
		if review.Notification != nil {
			if err := insertNotification(ctx, tx, review.Notification); err != nil {
				return err
			}
		}
		current.Status = review.Decision
		reviewedBy := review.ReviewedBy
		reviewedAt := review.ReviewedAt
		current.ReviewedBy = &reviewedBy
		current.ReviewedAt = &reviewedAt
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func setCustomerDefault(ctx context.Context, tx pgx.Tx, customerID core.ID, flag bool, at time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE customers SET is_default = $2, updated_at = $3 WHERE id = $1`,
		customerID, flag, at,
	)
	if err != nil {
		return fmt.Errorf("updating customer default flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrReferenceMissing
	}
	return nil
}

// Delete removes the row and, through ON DELETE CASCADE, its attachment rows.
// Blobs stay in the store.
func (r *ApplicationRepo) Delete(ctx context.Context, id core.ID) (*model.Application, error) {
	query := `DELETE FROM applications WHERE id = $1 RETURNING ` + applicationColumnsSQL
	var app model.Application
	if err := pgxscan.Get(ctx, r.db, &app, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("deleting application: %w", err)
	}
	return &app, nil
}
