package model

import (
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

type Notification struct {
	ID        core.ID   `db:"id"         json:"id"`
	UserID    core.ID   `db:"user_id"    json:"user_id"`
	Content   string    `db:"content"    json:"content"`
	IsRead    bool      `db:"is_read"    json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
