package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/notification/model"
	"github.com/compozy/defaultdesk/engine/notification/uc"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
)

var notificationColumns = []string{"id", "user_id", "content", "is_read", "created_at"}

type NotificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID core.ID, limit int) ([]*model.Notification, error) {
	query, args, err := squirrel.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Suffix("LIMIT ?", limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var out []*model.Notification
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scanning notifications: %w", err)
	}
	return out, nil
}

// MarkRead is idempotent for the owner and NOT_FOUND for anyone else.
func (r *NotificationRepo) MarkRead(ctx context.Context, id core.ID, userID core.ID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrNotificationNotFound
	}
	return nil
}

// insertNotification runs inside the review transaction.
func insertNotification(ctx context.Context, db execer, n *model.Notification) error {
	query, args, err := squirrel.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Content, n.IsRead, n.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}
