package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// Type is the direction of a default-status change.
type Type string

const (
	TypeDefault Type = "DEFAULT"
	TypeRebirth Type = "REBIRTH"
)

var ErrUnknownType = errors.New("unknown reason type")

func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeDefault:
		return TypeDefault, nil
	case TypeRebirth:
		return TypeRebirth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func (t Type) Valid() bool {
	return t == TypeDefault || t == TypeRebirth
}

func (t Type) String() string {
	return string(t)
}

// UnmarshalText rejects unknown types at bind time.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DefaultFlag is the is_default value an approved application of this type
// leaves on its customer.
func (t Type) DefaultFlag() bool {
	return t == TypeDefault
}

// RequiredFlag is the is_default value a customer must currently have for an
// application of this type to make sense.
func (t Type) RequiredFlag() bool {
	return t == TypeRebirth
}

type Reason struct {
	ID          core.ID   `db:"id"          json:"id"`
	Type        Type      `db:"type"        json:"type"`
	Description string    `db:"description" json:"description"`
	Enabled     bool      `db:"enabled"     json:"enabled"`
	SortOrder   int       `db:"sort_order"  json:"sort_order"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

type Filter struct {
	Type        Type
	EnabledOnly bool
}
