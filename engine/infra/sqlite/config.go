package sqlite

import (
	"time"

	"github.com/compozy/defaultdesk/pkg/config"
)

// Config captures SQLite store configuration derived from application settings.
type Config struct {
	// Path is the database location or ":memory:" for in-memory deployments.
	Path string

	// MaxOpenConns controls the pool size exposed by database/sql.
	MaxOpenConns int

	// MaxIdleConns limits idle connections retained in the pool.
	MaxIdleConns int

	// ConnMaxLifetime bounds connection reuse duration.
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime bounds idle connection retention.
	ConnMaxIdleTime time.Duration

	// BusyTimeout configures sqlite busy timeout via PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

// AuditFromAppConfig configures the append-only audit database. SQLite
// serializes writers, so one open connection is enough.
func AuditFromAppConfig(cfg *config.Config) *Config {
	return &Config{
		Path:         cfg.Audit.SQLitePath,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		BusyTimeout:  cfg.Timeouts.Operation,
	}
}
