package repo

import (
	"database/sql"
	"time"

	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	attachmentuc "github.com/compozy/defaultdesk/engine/attachment/uc"
	"github.com/compozy/defaultdesk/engine/audit"
	authpg "github.com/compozy/defaultdesk/engine/auth/infra/postgres"
	authredis "github.com/compozy/defaultdesk/engine/auth/infra/redis"
	authuc "github.com/compozy/defaultdesk/engine/auth/uc"
	customeruc "github.com/compozy/defaultdesk/engine/customer/uc"
	"github.com/compozy/defaultdesk/engine/infra/postgres"
	"github.com/compozy/defaultdesk/engine/infra/sqlite"
	notificationuc "github.com/compozy/defaultdesk/engine/notification/uc"
	reasonuc "github.com/compozy/defaultdesk/engine/reason/uc"
	statsuc "github.com/compozy/defaultdesk/engine/stats/uc"
)

// Provider exposes repositories required by the application, backed by
// PostgreSQL. It returns the use-case interfaces rather than driver types.
type Provider struct {
	db           postgres.DB
	auditDB      *sql.DB
	sessionCache authredis.Interface
	sessionTTL   time.Duration
}

type Option func(*Provider)

// WithSQLiteAudit moves the audit trail to a separate SQLite database.
func WithSQLiteAudit(db *sql.DB) Option {
	return func(p *Provider) { p.auditDB = db }
}

// WithSessionCache puts a Redis read-through cache in front of session lookups.
func WithSessionCache(client authredis.Interface, ttl time.Duration) Option {
	return func(p *Provider) {
		p.sessionCache = client
		p.sessionTTL = ttl
	}
}

func NewProvider(db postgres.DB, opts ...Option) *Provider {
	p := &Provider{db: db}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) NewAuthRepo() authuc.Repository {
	repo := authpg.NewRepository(p.db)
	if p.sessionCache != nil {
		return authredis.NewCachedRepository(repo, p.sessionCache, p.sessionTTL)
	}
	return repo
}

func (p *Provider) NewCustomerRepo() customeruc.Repository { return postgres.NewCustomerRepo(p.db) }

func (p *Provider) NewReasonRepo() reasonuc.Repository { return postgres.NewReasonRepo(p.db) }

func (p *Provider) NewApplicationRepo() appuc.Repository { return postgres.NewApplicationRepo(p.db) }

func (p *Provider) NewAttachmentRepo() attachmentuc.Repository { return postgres.NewAttachmentRepo(p.db) }

func (p *Provider) NewNotificationRepo() notificationuc.Repository {
	return postgres.NewNotificationRepo(p.db)
}

func (p *Provider) NewStatsRepo() statsuc.Repository { return postgres.NewStatsRepo(p.db) }

func (p *Provider) NewAuditSink() audit.Sink {
	if p.auditDB != nil {
		return sqlite.NewAuditRepo(p.auditDB)
	}
	return postgres.NewAuditRepo(p.db)
}
