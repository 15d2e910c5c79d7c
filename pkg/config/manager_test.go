package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	t.Run("Should expose the loaded configuration", func(t *testing.T) {
		m := NewManager(nil)
		cfg, err := m.Load(context.Background(), NewDefaultProvider())
		require.NoError(t, err)
		assert.Same(t, cfg, m.Get())
		require.NoError(t, m.Close(context.Background()))
	})

	t.Run("Should notify listeners when a reload changes values", func(t *testing.T) {
		path := writeYAML(t, "runtime:\n  log_level: info\n")
		m := NewManager(nil)
		m.SetDebounce(0)
		_, err := m.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		defer m.Close(context.Background())

		var calls atomic.Int32
		var level atomic.Value
		m.OnChange(func(c *Config) {
			calls.Add(1)
			level.Store(c.Runtime.LogLevel)
		})

		require.NoError(t, os.WriteFile(path, []byte("runtime:\n  log_level: debug\n"), 0o600))
		require.NoError(t, m.Reload(context.Background()))
		assert.Equal(t, "debug", m.Get().Runtime.LogLevel)
		assert.GreaterOrEqual(t, calls.Load(), int32(1))
		assert.Equal(t, "debug", level.Load())
	})

	t.Run("Should keep the previous configuration when a reload is invalid", func(t *testing.T) {
		path := writeYAML(t, "server:\n  port: 8081\n")
		m := NewManager(nil)
		_, err := m.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		defer m.Close(context.Background())

		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600))
		require.Error(t, m.Reload(context.Background()))
		assert.Equal(t, 8081, m.Get().Server.Port)
	})
}

func TestContext(t *testing.T) {
	t.Run("Should return the attached manager's configuration", func(t *testing.T) {
		m := NewManager(nil)
		_, err := m.Load(context.Background())
		require.NoError(t, err)
		ctx := ContextWithManager(context.Background(), m)
		assert.Same(t, m.Get(), FromContext(ctx))
	})

	t.Run("Should fall back to defaults without a manager", func(t *testing.T) {
		cfg := FromContext(context.Background())
		require.NotNil(t, cfg)
		assert.Equal(t, 200, cfg.Search.MaxLimit)
	})
}
