package cache

import (
	"context"
	"fmt"

	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// Cache bundles the Redis client with the lock manager built on it. Redis is
// nil when disabled; LockManager is then in-process.
type Cache struct {
	Redis       *Redis
	LockManager LockManager
}

// SetupCache connects to Redis when enabled and always returns a usable
// lock manager.
func SetupCache(ctx context.Context, cfg *config.Config) (*Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	if !cfg.Redis.Enabled {
		logger.FromContext(ctx).Info("Redis disabled; using in-process locks")
		return &Cache{LockManager: NewMemoryLockManager()}, nil
	}
	redis, err := NewRedis(ctx, FromAppConfig(cfg))
	if err != nil {
		return nil, err
	}
	lockManager, err := NewRedisLockManager(redis)
	if err != nil {
		redis.Close()
		return nil, err
	}
	return &Cache{Redis: redis, LockManager: lockManager}, nil
}

func (c *Cache) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

func (c *Cache) HealthCheck(ctx context.Context) error {
	if c.Redis != nil {
		return c.Redis.HealthCheck(ctx)
	}
	return nil
}
