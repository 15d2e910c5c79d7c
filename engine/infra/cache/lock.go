package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// ErrLockNotAcquired means another holder owns the resource right now.
var ErrLockNotAcquired = errors.New("lock held by another holder")

const lockKeyPrefix = "defaultdesk:lock:"

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type Lock interface {
	Resource() string
	Release(ctx context.Context) error
}

// LockManager grants non-blocking, expiring locks.
type LockManager interface {
	Acquire(ctx context.Context, resource string, ttl time.Duration) (Lock, error)
}

type RedisLockManager struct {
	client RedisInterface
}

func NewRedisLockManager(client RedisInterface) (*RedisLockManager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required for lock manager")
	}
	return &RedisLockManager{client: client}, nil
}

func (m *RedisLockManager) Acquire(ctx context.Context, resource string, ttl time.Duration) (Lock, error) {
	token, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("generating lock token: %w", err)
	}
	ok, err := m.client.SetNX(ctx, lockKeyPrefix+resource, token.String(), ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %q: %w", resource, err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &redisLock{client: m.client, resource: resource, token: token.String()}, nil
}

type redisLock struct {
	client   RedisInterface
	resource string
	token    string
}

func (l *redisLock) Resource() string { return l.resource }

func (l *redisLock) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{lockKeyPrefix + l.resource}, l.token).Err(); err != nil {
		return fmt.Errorf("releasing lock %q: %w", l.resource, err)
	}
	return nil
}

// MemoryLockManager is the single-process fallback used when Redis is disabled.
type MemoryLockManager struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	seq   uint64
	nowFn func() time.Time
}

type memoryEntry struct {
	token   uint64
	expires time.Time
}

func NewMemoryLockManager() *MemoryLockManager {
	return &MemoryLockManager{held: make(map[string]memoryEntry), nowFn: time.Now}
}

func (m *MemoryLockManager) Acquire(_ context.Context, resource string, ttl time.Duration) (Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFn()
	if entry, ok := m.held[resource]; ok && now.Before(entry.expires) {
		return nil, ErrLockNotAcquired
	}
	m.seq++
	m.held[resource] = memoryEntry{token: m.seq, expires: now.Add(ttl)}
	return &memoryLock{manager: m, resource: resource, token: m.seq}, nil
}

type memoryLock struct {
	manager  *MemoryLockManager
	resource string
	token    uint64
}

func (l *memoryLock) Resource() string { return l.resource }

func (l *memoryLock) Release(_ context.Context) error {
	l.manager.mu.Lock()
	defer l.manager.mu.Unlock()
	if entry, ok := l.manager.held[l.resource]; ok && entry.token == l.token {
		delete(l.manager.held, l.resource)
	}
	return nil
}
