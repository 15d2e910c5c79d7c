package config

import (
	"context"
	"sync"

	"github.com/compozy/defaultdesk/pkg/logger"
)

type ContextKey string

const ManagerCtxKey ContextKey = "config_manager"

func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ManagerCtxKey, m)
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// ManagerFromContext falls back to a manager built from defaults and the
// environment when none was attached.
func ManagerFromContext(ctx context.Context) *Manager {
	if ctx != nil {
		if m, ok := ctx.Value(ManagerCtxKey).(*Manager); ok && m != nil {
			return m
		}
	}
	defaultManagerOnce.Do(func() {
		m := NewManager(NewService())
		if _, err := m.Load(context.Background(), NewDefaultProvider(), NewEnvProvider()); err != nil {
			logger.FromContext(ctx).Warn("failed to load default configuration", "error", err)
			m.current.Store(Default())
		}
		defaultManager = m
	})
	return defaultManager
}

func FromContext(ctx context.Context) *Config {
	return ManagerFromContext(ctx).Get()
}
