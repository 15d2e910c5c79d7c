package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to configuration files.
//
// The parent directory is watched so editors that replace the file by rename
// are still observed.
type Watcher struct {
	watcher   *fsnotify.Watcher
	callbacks []func()
	mu        sync.RWMutex
	files     map[string]context.Context
	startOnce sync.Once
	closeOnce sync.Once
}

func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher: fsWatcher,
		files:   make(map[string]context.Context),
	}, nil
}

// Watch registers path until ctx is canceled.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}
	w.mu.Lock()
	w.files[absPath] = ctx
	w.mu.Unlock()
	w.startOnce.Do(func() {
		go w.handleEvents(ctx)
	})
	return nil
}

func (w *Watcher) OnChange(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

func (w *Watcher) handleEvents(ctx context.Context) {
	log := logger.FromContext(ctx)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.mu.RLock()
			fileCtx, watched := w.files[filepath.Clean(event.Name)]
			w.mu.RUnlock()
			if !watched || fileCtx.Err() != nil {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.notify()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("configuration watcher error", "error", err)
		}
	}
}

func (w *Watcher) notify() {
	w.mu.RLock()
	callbacks := append([]func(){}, w.callbacks...)
	w.mu.RUnlock()
	for _, callback := range callbacks {
		if callback != nil {
			callback()
		}
	}
}

func (w *Watcher) Close() error {
	var closeErr error
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return closeErr
}
