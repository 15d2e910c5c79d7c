package model

import (
	"database/sql"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// SessionTokenPrefix marks opaque bearer tokens issued by /auth/token.
const SessionTokenPrefix = "dd_"

// Session is a login. It never carries the role; that is read per request.
type Session struct {
	ID          core.ID      `db:"id"          json:"id"`
	UserID      core.ID      `db:"user_id"     json:"user_id"`
	Fingerprint []byte       `db:"fingerprint" json:"-"`
	Prefix      string       `db:"prefix"      json:"prefix"`
	CreatedAt   time.Time    `db:"created_at"  json:"created_at"`
	ExpiresAt   time.Time    `db:"expires_at"  json:"expires_at"`
	LastUsed    sql.NullTime `db:"last_used"   json:"-"`
	RevokedAt   sql.NullTime `db:"revoked_at"  json:"-"`
}

func (s *Session) Usable(now time.Time) bool {
	return !s.RevokedAt.Valid && now.Before(s.ExpiresAt)
}

// Principal is the resolved caller of a request.
type Principal struct {
	User      *User
	SessionID core.ID
}

func (p *Principal) ID() core.ID {
	return p.User.ID
}

func (p *Principal) Role() Role {
	return p.User.Role
}
