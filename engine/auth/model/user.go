package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// Role is the closed set of access levels. Anything else is rejected.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleOperator Role = "operator"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleReviewer, RoleOperator}
}

// ParseRole decodes a stored or submitted role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleReviewer:
		return RoleReviewer, nil
	case RoleOperator:
		return RoleOperator, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil && string(r) == strings.ToLower(string(r))
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalText makes request bodies with unknown roles fail to bind.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID           core.ID   `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	DisplayName  string    `db:"display_name"  json:"display_name"`
	Role         Role      `db:"role"          json:"role"`
	Active       bool      `db:"active"        json:"active"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// NormalizeEmail is the canonical form used for lookups and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
