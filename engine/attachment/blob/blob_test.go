package blob

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should write objects under the directory and sign download links", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir, "/files/", []byte("k"))
		require.NoError(t, err)
		ref, err := store.Put(ctx, "applications/a1/x-report.pdf", []byte("pdf"), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "/files/applications/a1/x-report.pdf", ref.URL)

		data, err := os.ReadFile(filepath.Join(dir, "applications", "a1", "x-report.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "pdf", string(data))

		link, err := store.URL(ctx, ref.Key, time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, ref.URL+"?"))
		assert.Contains(t, link, "signature=")
	})

	t.Run("Should refuse keys that escape the directory", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir(), "/files", nil)
		require.NoError(t, err)
		_, err = store.Put(ctx, "../outside", []byte("x"), "")
		assert.Error(t, err)
		_, err = store.URL(ctx, "../../etc/passwd", time.Minute)
		assert.Error(t, err)
	})
}

func TestLocalStore_Handler(t *testing.T) {
	ctx := context.Background()
	get := func(h http.Handler, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
		return w
	}
	setup := func(t *testing.T) (*LocalStore, string) {
		t.Helper()
		store, err := NewLocalStore(t.TempDir(), "/files", []byte("k"))
		require.NoError(t, err)
		ref, err := store.Put(ctx, "applications/a1/x-report.pdf", []byte("pdf"), "application/pdf")
		require.NoError(t, err)
		return store, ref.Key
	}

	t.Run("Should serve a signed link", func(t *testing.T) {
		store, key := setup(t)
		link, err := store.URL(ctx, key, time.Minute)
		require.NoError(t, err)
		w := get(store.Handler(), link)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pdf", w.Body.String())
	})

	t.Run("Should refuse a link without a signature", func(t *testing.T) {
		store, key := setup(t)
		w := get(store.Handler(), "/files/"+key)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should refuse a signature issued for another key", func(t *testing.T) {
		store, key := setup(t)
		_, err := store.Put(ctx, "applications/a1/other.pdf", []byte("other"), "application/pdf")
		require.NoError(t, err)
		link, err := store.URL(ctx, key, time.Minute)
		require.NoError(t, err)
		forged := strings.Replace(link, "x-report.pdf", "other.pdf", 1)
		w := get(store.Handler(), forged)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should refuse an expired link", func(t *testing.T) {
		store, key := setup(t)
		link, err := store.URL(ctx, key, time.Minute)
		require.NoError(t, err)
		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		w := get(store.Handler(), link)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should refuse links signed with a different key", func(t *testing.T) {
		store, key := setup(t)
		other, err := NewLocalStore(t.TempDir(), "/files", []byte("other"))
		require.NoError(t, err)
		link, err := other.URL(ctx, key, time.Minute)
		require.NoError(t, err)
		w := get(store.Handler(), link)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

type flakyStore struct {
	failures int32
	calls    atomic.Int32
	delay    time.Duration
}

func (f *flakyStore) Put(ctx context.Context, key string, _ []byte, _ string) (attachment.BlobRef, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return attachment.BlobRef{}, ctx.Err()
		}
	}
	if n <= f.failures {
		return attachment.BlobRef{}, errors.New("connection reset")
	}
	return attachment.BlobRef{Key: key, URL: "mem://" + key}, nil
}

func (f *flakyStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "mem://" + key, nil
}

func testResilience() *ResilienceConfig {
	cfg := DefaultResilienceConfig()
	cfg.RetryWaitBase = time.Millisecond
	cfg.CallTimeout = 50 * time.Millisecond
	return cfg
}

func TestResilientStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should retry transient upload failures", func(t *testing.T) {
		next := &flakyStore{failures: 2}
		store := NewResilientStore(next, testResilience())
		ref, err := store.Put(ctx, "k", []byte("x"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "mem://k", ref.URL)
		assert.Equal(t, int32(3), next.calls.Load())
	})

	t.Run("Should give up after the configured attempts", func(t *testing.T) {
		next := &flakyStore{failures: 100}
		cfg := testResilience()
		cfg.RetryAttempts = 2
		store := NewResilientStore(next, cfg)
		_, err := store.Put(ctx, "k", []byte("x"), "text/plain")
		assert.Error(t, err)
		assert.Equal(t, int32(3), next.calls.Load())
	})

	t.Run("Should bound each call with the timeout", func(t *testing.T) {
		next := &flakyStore{delay: time.Second}
		cfg := testResilience()
		cfg.RetryAttempts = 0
		store := NewResilientStore(next, cfg)
		start := time.Now()
		_, err := store.Put(ctx, "k", []byte("x"), "text/plain")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}
