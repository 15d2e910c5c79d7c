package policy

import (
	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/samber/lo"
)

// Route is a client shell screen and the grant that unlocks it.
type Route struct {
	Path   string
	Action Action
	Kind   Kind
}

var shellRoutes = []Route{
	{Path: "/applications", Action: ActionView, Kind: KindApplication},
	{Path: "/customers", Action: ActionView, Kind: KindCustomer},
	{Path: "/reasons", Action: ActionEdit, Kind: KindReason},
	{Path: "/stats", Action: ActionView, Kind: KindStats},
	{Path: "/audit", Action: ActionView, Kind: KindAuditLog},
	{Path: "/users", Action: ActionEdit, Kind: KindUser},
}

// RoutesForRole lists the shell paths a role may open, in menu order.
func RoutesForRole(role model.Role) []string {
	return lo.FilterMap(shellRoutes, func(r Route, _ int) (string, bool) {
		return r.Path, RoleGrants(role, r.Action, r.Kind)
	})
}
