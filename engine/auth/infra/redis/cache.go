package redis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// CachedRepository caches session lookups in Redis. Users are never cached:
// roles and the active flag must be read fresh on every request.
type CachedRepository struct {
	uc.Repository
	client Interface
	ttl    time.Duration
}

// Interface defines the minimal Redis interface needed for caching
type Interface interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cachedSession mirrors model.Session without its json:"-" masking.
type cachedSession struct {
	ID        core.ID    `json:"id"`
	UserID    core.ID    `json:"user_id"`
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func NewCachedRepository(repo uc.Repository, client Interface, ttl time.Duration) uc.Repository {
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &CachedRepository{Repository: repo, client: client, ttl: ttl}
}

func (c *CachedRepository) cacheKey(fingerprint []byte) string {
	return fmt.Sprintf("auth:session:%x", fingerprint)
}

func toCached(s *model.Session) cachedSession {
	out := cachedSession{
		ID:        s.ID,
		UserID:    s.UserID,
		Prefix:    s.Prefix,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if s.LastUsed.Valid {
		t := s.LastUsed.Time
		out.LastUsed = &t
	}
	if s.RevokedAt.Valid {
		t := s.RevokedAt.Time
		out.RevokedAt = &t
	}
	return out
}

func (cs cachedSession) toModel(fingerprint []byte) *model.Session {
	s := &model.Session{
		ID:          cs.ID,
		UserID:      cs.UserID,
		Fingerprint: fingerprint,
		Prefix:      cs.Prefix,
		CreatedAt:   cs.CreatedAt,
		ExpiresAt:   cs.ExpiresAt,
	}
	if cs.LastUsed != nil {
		s.LastUsed = sql.NullTime{Time: *cs.LastUsed, Valid: true}
	}
	if cs.RevokedAt != nil {
		s.RevokedAt = sql.NullTime{Time: *cs.RevokedAt, Valid: true}
	}
	return s
}

func (c *CachedRepository) GetSessionByFingerprint(ctx context.Context, fingerprint []byte) (*model.Session, error) {
	log := logger.FromContext(ctx)
	key := c.cacheKey(fingerprint)
	cached := c.client.Get(ctx, key)
	if cached.Err() == nil {
		var cs cachedSession
		if err := json.Unmarshal([]byte(cached.Val()), &cs); err == nil {
			log.Debug("Session cache hit", "session_id", cs.ID)
			return cs.toModel(fingerprint), nil
		}
		log.Debug("Failed to unmarshal cached session", "cache_key", key)
	}

	session, err := c.Repository.GetSessionByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if !session.Usable(time.Now()) {
		return session, nil
	}
	ttl := min(c.ttl, time.Until(session.ExpiresAt))
	payload, err := json.Marshal(toCached(session))
	if err != nil {
		log.Warn("Failed to marshal session for cache", "error", err)
		return session, nil
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn("Failed to cache session", "error", err)
	}
	return session, nil
}

// RevokeSession drops the cached entry before and after the write so a
// concurrent reader cannot resurrect a revoked session.
func (c *CachedRepository) RevokeSession(ctx context.Context, fingerprint []byte) error {
	log := logger.FromContext(ctx)
	key := c.cacheKey(fingerprint)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Warn("Failed to invalidate session cache", "cache_key", key, "error", err)
	}
	if err := c.Repository.RevokeSession(ctx, fingerprint); err != nil {
		return err
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Warn("Failed to invalidate session cache", "cache_key", key, "error", err)
	}
	return nil
}
