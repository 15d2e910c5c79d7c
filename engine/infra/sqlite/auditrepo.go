package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/core"
)

// timeLayout is fixed width so TEXT comparison orders like time.
const timeLayout = "2006-01-02 15:04:05.000000000"

var auditColumns = []string{"id", "created_at", "actor_id", "action", "target_type", "target_id", "details", "ip"}

// AuditRepo implements audit.Sink on a SQLite *sql.DB.
type AuditRepo struct{ db *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (r *AuditRepo) Append(ctx context.Context, entry *audit.Entry) error {
	details, err := ToJSONText(entry.Details)
	if err != nil {
		return fmt.Errorf("sqlite: encode audit details: %w", err)
	}
	var actor sql.NullString
	if entry.ActorID != nil {
		actor = sql.NullString{String: entry.ActorID.String(), Valid: true}
	}
	const q = `INSERT INTO audit_logs (id, created_at, actor_id, action, target_type, target_id, details, ip)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(
		ctx, q,
		entry.ID.String(), formatTime(entry.CreatedAt), actor, entry.Action,
		entry.TargetType, entry.TargetID, details, entry.IP,
	); err != nil {
		return fmt.Errorf("sqlite: append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	sb := squirrel.Select(auditColumns...).From("audit_logs")
	if !filter.ActorID.IsZero() {
		sb = sb.Where(squirrel.Eq{"actor_id": filter.ActorID.String()})
	}
	if filter.Action != "" {
		sb = sb.Where(squirrel.Eq{"action": filter.Action})
	}
	if filter.TargetType != "" {
		sb = sb.Where(squirrel.Eq{"target_type": filter.TargetType})
	}
	if filter.Start != nil {
		sb = sb.Where(squirrel.GtOrEq{"created_at": formatTime(*filter.Start)})
	}
	if filter.End != nil {
		sb = sb.Where(squirrel.LtOrEq{"created_at": formatTime(*filter.End)})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = audit.DefaultListLimit
	}
	q, args, err := sb.OrderBy("created_at DESC", "id DESC").Suffix("LIMIT ?", limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build audit query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list audit entries: %w", err)
	}
	defer rows.Close()
	var out []*audit.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iter audit entries: %w", err)
	}
	return out, nil
}

func scanEntry(rows *sql.Rows) (*audit.Entry, error) {
	var (
		id, createdAt string
		actor         sql.NullString
		details       string
		entry         audit.Entry
	)
	if err := rows.Scan(
		&id, &createdAt, &actor, &entry.Action, &entry.TargetType, &entry.TargetID, &details, &entry.IP,
	); err != nil {
		return nil, fmt.Errorf("sqlite: scan audit entry: %w", err)
	}
	entry.ID = core.ID(id)
	ts, err := time.ParseInLocation(timeLayout, createdAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = ts
	if actor.Valid {
		actorID := core.ID(actor.String)
		entry.ActorID = &actorID
	}
	if err := FromJSONText(details, &entry.Details); err != nil {
		return nil, fmt.Errorf("sqlite: decode audit details %s: %w", id, err)
	}
	return &entry, nil
}

// ToJSONText renders v for a TEXT column; nil becomes "{}".
func ToJSONText(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func FromJSONText(s string, out any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
