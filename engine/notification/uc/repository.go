package uc

import (
	"context"
	"errors"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/notification/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	ListForUser(ctx context.Context, userID core.ID, limit int) ([]*model.Notification, error)
	// MarkRead returns ErrNotificationNotFound when the notification is
	// missing or belongs to someone else.
	MarkRead(ctx context.Context, id core.ID, userID core.ID) error
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)
