package model

import (
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// Customer is master data. IsDefault only changes when an application is
// approved; no update input carries it.
type Customer struct {
	ID        core.ID   `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Industry  string    `db:"industry"   json:"industry"`
	Region    string    `db:"region"     json:"region"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Filter struct {
	Name      string
	IsDefault *bool
	Limit     int
	Offset    int
}
