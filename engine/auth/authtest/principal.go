// Package authtest builds resolved callers for use case and handler tests.
package authtest

import (
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
)

// Principal returns an active caller with a fresh ID and the given role.
func Principal(role model.Role) *model.Principal {
	return PrincipalWithID(core.MustNewID(), role)
}

func PrincipalWithID(id core.ID, role model.Role) *model.Principal {
	now := time.Now().UTC()
	return &model.Principal{
		User: &model.User{
			ID:          id,
			Email:       string(role) + "-" + id.String() + "@example.com",
			DisplayName: string(role),
			Role:        role,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		SessionID: core.MustNewID(),
	}
}

func Admin() *model.Principal    { return Principal(model.RoleAdmin) }
func Reviewer() *model.Principal { return Principal(model.RoleReviewer) }
func Operator() *model.Principal { return Principal(model.RoleOperator) }
