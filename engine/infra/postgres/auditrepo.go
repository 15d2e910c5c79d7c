package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var auditColumns = []string{"id", "created_at", "actor_id", "action", "target_type", "target_id", "details", "ip"}

// AuditRepo is the postgres audit.Sink. The table rejects UPDATE and DELETE
// with a trigger.
type AuditRepo struct {
	db DB
}

func NewAuditRepo(db DB) *AuditRepo {
	return &AuditRepo{db: db}
}

type auditRow struct {
	ID         core.ID   `db:"id"`
	CreatedAt  time.Time `db:"created_at"`
	ActorID    *core.ID  `db:"actor_id"`
	Action     string    `db:"action"`
	TargetType string    `db:"target_type"`
	TargetID   string    `db:"target_id"`
	Details    []byte    `db:"details"`
	IP         string    `db:"ip"`
}

func (row *auditRow) toEntry() (*audit.Entry, error) {
	entry := &audit.Entry{
		ID:         row.ID,
		CreatedAt:  row.CreatedAt,
		ActorID:    row.ActorID,
		Action:     row.Action,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		IP:         row.IP,
	}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &entry.Details); err != nil {
			return nil, fmt.Errorf("decoding audit details %s: %w", row.ID, err)
		}
	}
	return entry, nil
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}

func (r *AuditRepo) Append(ctx context.Context, entry *audit.Entry) error {
	details, err := marshalDetails(entry.Details)
	if err != nil {
		return fmt.Errorf("encoding audit details: %w", err)
	}
	query, args, err := squirrel.Insert("audit_logs").
		Columns(auditColumns...).
		Values(
			entry.ID, entry.CreatedAt, entry.ActorID, entry.Action,
			entry.TargetType, entry.TargetID, details, entry.IP,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	query, args, err := auditListQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var rows []*auditRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning audit entries: %w", err)
	}
	out := make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func auditListQuery(filter audit.Filter) squirrel.SelectBuilder {
	sb := squirrel.Select(auditColumns...).From("audit_logs")
	if !filter.ActorID.IsZero() {
		sb = sb.Where(squirrel.Eq{"actor_id": filter.ActorID})
	}
	if filter.Action != "" {
		sb = sb.Where(squirrel.Eq{"action": filter.Action})
	}
	if filter.TargetType != "" {
		sb = sb.Where(squirrel.Eq{"target_type": filter.TargetType})
	}
	if filter.Start != nil {
		sb = sb.Where(squirrel.GtOrEq{"created_at": *filter.Start})
	}
	if filter.End != nil {
		sb = sb.Where(squirrel.LtOrEq{"created_at": *filter.End})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = audit.DefaultListLimit
	}
	return sb.OrderBy("created_at DESC", "id DESC").
		Suffix("LIMIT ?", limit).
		PlaceholderFormat(squirrel.Dollar)
}
