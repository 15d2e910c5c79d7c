// Package policy decides who may do what. It performs no I/O: callers load
// the persisted owner and status of a resource and pass them in.
package policy

import (
	"fmt"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
	ActionReview Action = "review"
	ActionAdd    Action = "add"
)

type Kind string

const (
	KindCustomer    Kind = "customer"
	KindReason      Kind = "reason"
	KindUser        Kind = "user"
	KindApplication Kind = "application"
	KindAttachment  Kind = "attachment"
	KindAuditLog    Kind = "audit_log"
	KindStats       Kind = "stats"
)

// Resource is the target of a decision. CreatedBy and Pending describe the
// owning application and must come from storage, never from the request.
type Resource struct {
	Kind      Kind
	CreatedBy core.ID
	Pending   bool
}

func Of(kind Kind) Resource {
	return Resource{Kind: kind}
}

// AttachmentOf describes an attachment target by its owning application.
func AttachmentOf(createdBy core.ID, pending bool) Resource {
	return Resource{Kind: KindAttachment, CreatedBy: createdBy, Pending: pending}
}

type roleSet uint8

const (
	admin roleSet = 1 << iota
	reviewer
	operator

	everyone = admin | reviewer | operator
)

func bit(role model.Role) roleSet {
	switch role {
	case model.RoleAdmin:
		return admin
	case model.RoleReviewer:
		return reviewer
	case model.RoleOperator:
		return operator
	default:
		return 0
	}
}

type rule struct {
	action Action
	kind   Kind
}

// rules is the role-level table. Attachment addition is row-level and
// handled separately in CanPerform.
var rules = map[rule]roleSet{
	{ActionCreate, KindCustomer}: admin,
	{ActionEdit, KindCustomer}:   admin,
	{ActionDelete, KindCustomer}: admin,
	{ActionCreate, KindReason}:   admin,
	{ActionEdit, KindReason}:     admin,
	{ActionDelete, KindReason}:   admin,
	{ActionCreate, KindUser}:     admin,
	{ActionEdit, KindUser}:       admin,
	{ActionDelete, KindUser}:     admin,

	{ActionCreate, KindApplication}: admin | operator,
	{ActionView, KindApplication}:   everyone,
	{ActionReview, KindApplication}: admin | reviewer,
	{ActionDelete, KindApplication}: admin,

	{ActionView, KindAuditLog}: admin,
	{ActionView, KindStats}:    everyone,

	// Read access the workflow screens depend on.
	{ActionView, KindCustomer}:   everyone,
	{ActionView, KindReason}:     everyone,
	{ActionView, KindAttachment}: everyone,
	{ActionView, KindUser}:       admin,
}

// CanPerform reports whether actor may apply action to resource. Anything
// not granted is denied, including unknown roles.
func CanPerform(role model.Role, actorID core.ID, action Action, resource Resource) bool {
	who := bit(role)
	if who == 0 {
		return false
	}
	if action == ActionAdd && resource.Kind == KindAttachment {
		return canAddAttachment(who, actorID, resource)
	}
	allowed, ok := rules[rule{action, resource.Kind}]
	return ok && allowed&who != 0
}

func canAddAttachment(who roleSet, actorID core.ID, r Resource) bool {
	if !r.Pending {
		return false
	}
	switch who {
	case admin:
		return true
	case operator:
		return !actorID.IsZero() && actorID == r.CreatedBy
	default:
		return false
	}
}

// RoleGrants reports whether role may ever perform action on kind, ignoring
// ownership and state. Used for early rejection before any lookup.
func RoleGrants(role model.Role, action Action, kind Kind) bool {
	who := bit(role)
	if who == 0 {
		return false
	}
	if action == ActionAdd && kind == KindAttachment {
		return who&(admin|operator) != 0
	}
	allowed, ok := rules[rule{action, kind}]
	return ok && allowed&who != 0
}

// Require is CanPerform for a resolved principal, returning a FORBIDDEN error on denial.
func Require(actor *model.Principal, action Action, resource Resource) error {
	if actor == nil || actor.User == nil {
		return core.Forbidden("no authenticated actor")
	}
	if !CanPerform(actor.Role(), actor.ID(), action, resource) {
		return core.Forbidden(fmt.Sprintf("%s may not %s %s", actor.Role(), action, resource.Kind))
	}
	return nil
}
