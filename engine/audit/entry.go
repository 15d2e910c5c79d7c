// Package audit holds the append-only trail of who did what. Use cases
// write through a Sink; the storage behind it is a deployment choice.
package audit

import (
	"context"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionReview = "REVIEW"
	ActionDelete = "DELETE"
	ActionUpload = "UPLOAD"
)

const (
	TargetApplication = "Application"
	TargetAttachment  = "ApplicationAttachment"
	TargetHTTP        = "HTTP"
)

type Entry struct {
	ID         core.ID        `db:"id"          json:"id"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
	ActorID    *core.ID       `db:"actor_id"    json:"actor_id,omitempty"`
	Action     string         `db:"action"      json:"action"`
	TargetType string         `db:"target_type" json:"target_type"`
	TargetID   string         `db:"target_id"   json:"target_id"`
	Details    map[string]any `db:"details"     json:"details,omitempty"`
	IP         string         `db:"ip"          json:"ip,omitempty"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	ActorID    core.ID
	Action     string
	TargetType string
	Start      *time.Time
	End        *time.Time
	Limit      int
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Sink is append-only: there is no update or delete.
type Sink interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
}

// NewEntry stamps an entry with a fresh ID, the current time and the client
// IP carried by ctx.
func NewEntry(ctx context.Context, actorID core.ID, action, targetType, targetID string, details map[string]any) *Entry {
	entry := &Entry{
		ID:         core.MustNewID(),
		CreatedAt:  time.Now().UTC(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IP:         ClientIPFromContext(ctx),
	}
	if !actorID.IsZero() {
		entry.ActorID = &actorID
	}
	return entry
}

type clientIPKey struct{}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
