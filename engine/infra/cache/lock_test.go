package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = r.Close() })
	return mr, r
}

func TestRedisLockManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse a second holder until release", func(t *testing.T) {
		_, r := newTestRedis(t)
		m, err := NewRedisLockManager(r)
		require.NoError(t, err)

		lock, err := m.Acquire(ctx, "application:1", time.Minute)
		require.NoError(t, err)
		_, err = m.Acquire(ctx, "application:1", time.Minute)
		assert.ErrorIs(t, err, ErrLockNotAcquired)

		require.NoError(t, lock.Release(ctx))
		again, err := m.Acquire(ctx, "application:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "application:1", again.Resource())
	})

	t.Run("Should not release a lock taken over after expiry", func(t *testing.T) {
		mr, r := newTestRedis(t)
		m, err := NewRedisLockManager(r)
		require.NoError(t, err)

		stale, err := m.Acquire(ctx, "application:2", time.Second)
		require.NoError(t, err)
		mr.FastForward(2 * time.Second)
		_, err = m.Acquire(ctx, "application:2", time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale.Release(ctx))
		assert.True(t, mr.Exists(lockKeyPrefix+"application:2"))
	})

	t.Run("Should keep independent resources independent", func(t *testing.T) {
		_, r := newTestRedis(t)
		m, err := NewRedisLockManager(r)
		require.NoError(t, err)
		_, err = m.Acquire(ctx, "application:a", time.Minute)
		require.NoError(t, err)
		_, err = m.Acquire(ctx, "application:b", time.Minute)
		assert.NoError(t, err)
	})
}

func TestMemoryLockManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Should behave like the redis manager in one process", func(t *testing.T) {
		m := NewMemoryLockManager()
		lock, err := m.Acquire(ctx, "x", time.Minute)
		require.NoError(t, err)
		_, err = m.Acquire(ctx, "x", time.Minute)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		require.NoError(t, lock.Release(ctx))
		_, err = m.Acquire(ctx, "x", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("Should let an expired lock be taken", func(t *testing.T) {
		m := NewMemoryLockManager()
		now := time.Now()
		m.nowFn = func() time.Time { return now }
		stale, err := m.Acquire(ctx, "y", time.Second)
		require.NoError(t, err)
		now = now.Add(2 * time.Second)
		_, err = m.Acquire(ctx, "y", time.Minute)
		require.NoError(t, err)
		require.NoError(t, stale.Release(ctx))
		_, err = m.Acquire(ctx, "y", time.Minute)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
	})
}
