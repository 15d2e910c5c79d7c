package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// ErrCodeRateLimited tags 429 problem documents.
const ErrCodeRateLimited = "RATE_LIMITED"

// Manager owns the limiter instances. Counters live in Redis when a client
// is supplied so every replica shares them.
type Manager struct {
	config *Config
	login  *limiter.Limiter
}

// NewManager builds the limiters. A nil client selects the in-memory store.
func NewManager(cfg *Config, client *redis.Client) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := newStore(cfg, client)
	if err != nil {
		return nil, err
	}
	m := &Manager{config: cfg}
	if !cfg.Login.Disabled {
		m.login = limiter.New(store, cfg.Login.ToLimiterRate())
	}
	return m, nil
}

func newStore(cfg *Config, client *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          cfg.Prefix,
		MaxRetry:        cfg.MaxRetry,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	if client == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return store, nil
}

// LoginMiddleware limits credential attempts per client IP.
func (m *Manager) LoginMiddleware() gin.HandlerFunc {
	return m.middleware(m.login)
}

func (m *Manager) middleware(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lim == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		result, err := lim.Get(ctx, c.FullPath()+":"+c.ClientIP())
		if err != nil {
			// fail open: a broken store must not lock everyone out
			logger.FromContext(ctx).Error("Rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !m.config.DisableHeaders {
			h := c.Writer.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))
		}
		if result.Reached {
			IncrementBlockedRequests(ctx, c.FullPath())
			router.RespondProblemWithCode(c, http.StatusTooManyRequests, ErrCodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}
