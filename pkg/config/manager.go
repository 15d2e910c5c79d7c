package config

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/compozy/defaultdesk/pkg/logger"
)

// Manager holds the live configuration and reloads it when a source changes.
type Manager struct {
	Service     Service
	current     atomic.Pointer[Config]
	sources     []Source
	callbacks   []func(*Config)
	callbackMu  sync.RWMutex
	reloadMu    sync.Mutex
	watchCtx    context.Context
	watchCancel context.CancelFunc
	watchWg     sync.WaitGroup
	closeOnce   sync.Once
	debounce    time.Duration
}

func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{
		Service:  service,
		debounce: 100 * time.Millisecond,
	}
}

// Load performs the initial load and starts watching sources that support it.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.reloadMu.Lock()
	m.sources = append([]Source(nil), sources...)
	m.reloadMu.Unlock()

	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.applyConfig(cfg)

	if m.watchCancel != nil {
		m.watchCancel()
	}
	m.watchCtx, m.watchCancel = context.WithCancel(context.WithoutCancel(ctx))
	m.startWatching(sources)
	return cfg, nil
}

func (m *Manager) Get() *Config {
	return m.current.Load()
}

// Reload re-reads every source. The previous configuration stays active on error.
func (m *Manager) Reload(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	cfg, err := m.Service.Load(ctx, m.sources...)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.applyConfig(cfg)
	return nil
}

// SetDebounce must be called before Load.
func (m *Manager) SetDebounce(d time.Duration) {
	m.debounce = d
}

func (m *Manager) OnChange(callback func(*Config)) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		if m.watchCancel != nil {
			m.watchCancel()
		}
		m.watchWg.Wait()
		m.reloadMu.Lock()
		sources := append([]Source(nil), m.sources...)
		m.reloadMu.Unlock()
		for _, source := range sources {
			if source == nil {
				continue
			}
			if err := source.Close(); err != nil {
				logger.FromContext(ctx).Error("failed to close configuration source", "error", err)
			}
		}
	})
	return nil
}

func (m *Manager) startWatching(sources []Source) {
	ctx := m.watchCtx
	for _, source := range sources {
		if source == nil || source.Type() != SourceYAML {
			continue
		}
		src := source
		m.watchWg.Add(1)
		go func() {
			defer m.watchWg.Done()
			var pending atomic.Bool
			err := src.Watch(ctx, func() {
				if !pending.CompareAndSwap(false, true) {
					return
				}
				time.AfterFunc(m.debounce, func() {
					pending.Store(false)
					if ctx.Err() != nil {
						return
					}
					if err := m.Reload(ctx); err != nil {
						logger.FromContext(ctx).Error("failed to reload configuration", "error", err)
					}
				})
			})
			if err != nil {
				logger.FromContext(ctx).Debug("configuration source is not watchable", "source", src.Type(), "error", err)
			}
		}()
	}
}

func (m *Manager) applyConfig(cfg *Config) {
	old := m.current.Swap(cfg)
	if old != nil && reflect.DeepEqual(old, cfg) {
		return
	}
	m.callbackMu.RLock()
	callbacks := append([]func(*Config)(nil), m.callbacks...)
	m.callbackMu.RUnlock()
	for _, callback := range callbacks {
		if callback != nil {
			callback(cfg)
		}
	}
}
