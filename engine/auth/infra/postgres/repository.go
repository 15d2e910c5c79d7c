package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var (
	userColumns    = []string{"id", "email", "display_name", "role", "active", "password_hash", "created_at", "updated_at"}
	sessionColumns = []string{"id", "user_id", "fingerprint", "prefix", "created_at", "expires_at", "last_used", "revoked_at"}
)

// Repository implements uc.Repository on PostgreSQL
type Repository struct {
	db DBInterface
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewRepository(db DBInterface) uc.Repository {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Email, user.DisplayName, user.Role, user.Active,
			user.PasswordHash, user.CreatedAt, user.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return uc.ErrEmailExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *Repository) getUser(ctx context.Context, where squirrel.Sqlizer) (*model.User, error) {
	query, args, err := squirrel.Select(userColumns...).
		From("users").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var user model.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id core.ID) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

// GetUserByEmail expects an already normalized email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query, args, err := squirrel.Select(userColumns...).
		From("users").
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var users []*model.User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, fmt.Errorf("scanning users: %w", err)
	}
	return users, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.Update("users").
		Set("display_name", user.DisplayName).
		Set("role", user.Role).
		Set("active", user.Active).
		Set("password_hash", user.PasswordHash).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrUserNotFound
	}
	return nil
}

// CreateInitialAdminIfNone uses INSERT ... WHERE NOT EXISTS so two
// concurrent bootstraps cannot both succeed.
func (r *Repository) CreateInitialAdminIfNone(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, display_name, role, active, password_hash, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = $9)
	`
	tag, err := r.db.Exec(
		ctx, query,
		user.ID, user.Email, user.DisplayName, user.Role, user.Active,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt, model.RoleAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uc.ErrEmailExists
		}
		return fmt.Errorf("creating initial admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrAlreadyBootstrapped
	}
	return nil
}

func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	query, args, err := squirrel.Insert("sessions").
		Columns("id", "user_id", "fingerprint", "prefix", "created_at", "expires_at").
		Values(session.ID, session.UserID, session.Fingerprint, session.Prefix, session.CreatedAt, session.ExpiresAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *Repository) GetSessionByFingerprint(ctx context.Context, fingerprint []byte) (*model.Session, error) {
	query, args, err := squirrel.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var session model.Session
	if err := pgxscan.Get(ctx, r.db, &session, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &session, nil
}

// TouchSession only moves last_used forward.
func (r *Repository) TouchSession(ctx context.Context, id core.ID, at time.Time) error {
	query := `UPDATE sessions SET last_used = GREATEST(COALESCE(last_used, $2), $2) WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("updating session last_used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrSessionNotFound
	}
	return nil
}

// RevokeSession is idempotent; revoking twice keeps the first timestamp.
func (r *Repository) RevokeSession(ctx context.Context, fingerprint []byte) error {
	query := `UPDATE sessions SET revoked_at = COALESCE(revoked_at, NOW()) WHERE fingerprint = $1`
	tag, err := r.db.Exec(ctx, query, fingerprint)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrSessionNotFound
	}
	return nil
}
