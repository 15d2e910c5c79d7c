package server

import (
	"context"

	"github.com/compozy/defaultdesk/engine/infra/server/appstate"
	authmw "github.com/compozy/defaultdesk/engine/infra/server/middleware/auth"
	"github.com/compozy/defaultdesk/engine/infra/server/middleware/ratelimit"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// authMiddleware builds the bearer-token guard for protected routes.
func authMiddleware(ctx context.Context, state *appstate.State, meter metric.Meter) gin.HandlerFunc {
	manager := authmw.NewManager(state.AuthRepo, state.Timeouts.Auth).WithMetrics(ctx, meter)
	return manager.Middleware()
}

// loginGuards throttles the token endpoint per client IP. A limiter that
// fails to build is logged and skipped rather than blocking logins.
func loginGuards(ctx context.Context, state *appstate.State, client *redis.Client, meter metric.Meter) []gin.HandlerFunc {
	log := logger.FromContext(ctx)
	cfg := ratelimit.FromAppConfig(state.Config)
	if cfg.Login.Disabled {
		log.Info("Login rate limiting disabled")
		return nil
	}
	if !state.Config.RateLimit.UseRedis {
		client = nil
	}
	if meter != nil {
		if err := ratelimit.InitMetrics(meter); err != nil {
			log.Error("Failed to initialize rate limit metrics", "error", err)
		}
	}
	manager, err := ratelimit.NewManager(cfg, client)
	if err != nil {
		log.Error("Failed to initialize rate limiting", "error", err)
		return nil
	}
	driver := "memory"
	if client != nil {
		driver = "redis"
	}
	log.Info("Login rate limiter initialized",
		"driver", driver,
		"limit", cfg.Login.Limit,
		"period", cfg.Login.Period)
	return []gin.HandlerFunc{manager.LoginMiddleware()}
}
