package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/cache"
	"github.com/compozy/defaultdesk/pkg/logger"
)

// withApplicationLock runs fn while holding the per-application lock. A held
// lock fails fast with CONFLICT so stale clients re-fetch instead of queueing.
func withApplicationLock[T any](ctx context.Context, deps *Deps, id core.ID, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if deps.Locks == nil {
		return fn(ctx)
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	lock, err := core.WithTimeoutResult(ctx, "acquire application lock", deps.Timeouts.Lock,
		func(ctx context.Context) (cache.Lock, error) {
			return deps.Locks.Acquire(ctx, lockResource(id), ttl)
		})
	if err != nil {
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return zero, core.NewError(
				fmt.Errorf("application %s is being changed by another request: %w", id, err),
				core.ErrCodeConflict,
				map[string]any{"application_id": id},
			)
		}
		return zero, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout(deps))
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			logger.FromContext(ctx).Warn("Failed to release application lock", "application_id", id, "error", err)
		}
	}()
	return fn(ctx)
}

func lockReleaseTimeout(deps *Deps) time.Duration {
	if deps.Timeouts.Lock > 0 {
		return deps.Timeouts.Lock
	}
	return defaultLockTTL
}
