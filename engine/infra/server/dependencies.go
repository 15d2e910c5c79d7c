package server

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/compozy/defaultdesk/engine/attachment/blob"
	authuc "github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/infra/cache"
	"github.com/compozy/defaultdesk/engine/infra/monitoring"
	"github.com/compozy/defaultdesk/engine/infra/postgres"
	"github.com/compozy/defaultdesk/engine/infra/repo"
	"github.com/compozy/defaultdesk/engine/infra/server/appstate"
	"github.com/compozy/defaultdesk/engine/infra/sqlite"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
	driverS3       = "s3"
)

func (s *Server) setupDependencies() (*appstate.State, error) {
	s.setupMonitoring()
	provider, err := s.setupStore()
	if err != nil {
		return nil, err
	}
	blobs, err := s.setupBlobStore()
	if err != nil {
		return nil, err
	}
	var metrics *monitoring.WorkflowMetrics
	if s.monitoring.IsInitialized() {
		metrics = s.monitoring.Workflow()
	}
	deps := appstate.NewBaseDeps(s.cfg, provider, s.cache.LockManager, blobs, metrics)
	state, err := appstate.NewState(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create app state: %w", err)
	}
	if err := s.bootstrapAdmin(state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Server) setupMonitoring() {
	log := logger.FromContext(s.ctx)
	start := time.Now()
	initCtx, cancel := context.WithTimeout(s.ctx, monitoringInitTimeout)
	defer cancel()
	s.monitoring = monitoring.NewMonitoringServiceWithFallback(initCtx, monitoring.FromAppConfig(s.cfg))
	if !s.monitoring.IsInitialized() {
		log.Info("Monitoring is disabled", "duration", time.Since(start))
		return
	}
	s.monitoring.SetAsGlobal()
	log.Debug("Monitoring ready", "duration", time.Since(start))
	s.onCleanup(func(ctx context.Context) {
		if err := s.monitoring.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown monitoring service", "error", err)
		}
	})
}

// setupStore connects postgres, migrates it when configured, then wires the
// optional sqlite audit database and redis cache into the provider.
func (s *Server) setupStore() (*repo.Provider, error) {
	log := logger.FromContext(s.ctx)
	cfg := s.cfg
	pgCfg := postgres.FromAppConfig(cfg)
	if cfg.Database.AutoMigrate {
		if err := postgres.ApplyMigrations(s.ctx, pgCfg.DSN()); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	start := time.Now()
	db, err := postgres.NewStore(s.ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s.db = db
	s.onCleanup(func(ctx context.Context) {
		if err := db.Close(ctx); err != nil {
			log.Error("Failed to close postgres", "error", err)
		}
	})
	log.Info("Database connected", "driver", driverPostgres, "duration", time.Since(start))

	var opts []repo.Option
	if cfg.Audit.Driver == driverSQLite {
		auditDB, err := sqlite.NewStore(s.ctx, sqlite.AuditFromAppConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		s.auditDB = auditDB
		s.onCleanup(func(ctx context.Context) {
			if err := auditDB.Close(ctx); err != nil {
				log.Error("Failed to close audit database", "error", err)
			}
		})
		if err := auditDB.Migrate(s.ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate audit database: %w", err)
		}
		opts = append(opts, repo.WithSQLiteAudit(auditDB.DB()))
	}
	log.Info("Audit sink configured", "driver", cfg.Audit.Driver)

	c, err := cache.SetupCache(s.ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup cache: %w", err)
	}
	s.cache = c
	s.onCleanup(func(context.Context) {
		if err := c.Close(); err != nil {
			log.Error("Failed to close cache", "error", err)
		}
	})
	if c.Redis != nil && cfg.Auth.SessionCacheTTL > 0 {
		opts = append(opts, repo.WithSessionCache(c.Redis.Client(), cfg.Auth.SessionCacheTTL))
		log.Info("Session cache enabled", "ttl", cfg.Auth.SessionCacheTTL)
	}
	return repo.NewProvider(db.Pool(), opts...), nil
}

// setupBlobStore wraps the configured store in the resilience guard. A local
// store also hands its signed-download handler to the router.
func (s *Server) setupBlobStore() (attachment.BlobStore, error) {
	cfg := s.cfg
	var (
		store attachment.BlobStore
		err   error
	)
	if cfg.Storage.Driver == driverS3 {
		store, err = blob.NewS3Store(s.ctx, &cfg.Storage.S3)
	} else {
		var local *blob.LocalStore
		local, err = blob.NewLocalStore(
			cfg.Storage.LocalDir,
			cfg.Storage.PublicBaseURL,
			[]byte(cfg.Storage.SigningKey.Value()),
		)
		if err == nil {
			store = local
			s.files = local.Handler()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to setup %s blob store: %w", cfg.Storage.Driver, err)
	}
	resilience := blob.DefaultResilienceConfig()
	resilience.CallTimeout = cfg.Timeouts.Blob
	resilience.RetryAttempts = cfg.Storage.RetryAttempts
	logger.FromContext(s.ctx).Info("Blob store configured", "driver", cfg.Storage.Driver)
	return blob.NewResilientStore(store, resilience), nil
}

func (s *Server) bootstrapAdmin(state *appstate.State) error {
	email := s.cfg.Auth.BootstrapEmail
	password := s.cfg.Auth.BootstrapPassword.Value()
	if email == "" || password == "" {
		return nil
	}
	uc := authuc.NewBootstrapAdmin(state.AuthRepo, state.AuthSettings, email, password)
	if _, err := uc.Execute(s.ctx); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	return nil
}

func (s *Server) redisClient() *redis.Client {
	if s.cache == nil || s.cache.Redis == nil {
		return nil
	}
	return s.cache.Redis.Client()
}

// healthCheck pings every backing service. A nil value means healthy.
func (s *Server) healthCheck(ctx context.Context) map[string]error {
	out := map[string]error{}
	if s.db != nil {
		out[driverPostgres] = s.db.HealthCheck(ctx)
	}
	if s.auditDB != nil {
		out["audit"] = s.auditDB.HealthCheck(ctx)
	}
	if s.cache != nil && s.cache.Redis != nil {
		out["redis"] = s.cache.HealthCheck(ctx)
	}
	return out
}
