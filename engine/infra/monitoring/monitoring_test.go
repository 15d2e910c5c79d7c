package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonitoringService(t *testing.T) {
	ctx := context.Background()
	t.Run("Should stay disabled with the default config", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, nil)
		require.NoError(t, err)
		assert.False(t, service.IsInitialized())
		assert.Equal(t, "/metrics", service.Path())
		assert.NotNil(t, service.Meter())
		assert.NotNil(t, service.Workflow())
	})
	t.Run("Should fail with invalid config", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, &Config{Enabled: true, Path: ""})
		require.Error(t, err)
		assert.Nil(t, service)
		assert.Contains(t, err.Error(), "monitoring path cannot be empty")
	})
	t.Run("Should initialize the Prometheus exporter when enabled", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = service.Shutdown(ctx) })
		assert.True(t, service.IsInitialized())
		assert.NotNil(t, service.exporter)
		assert.NotNil(t, service.provider)
		assert.NoError(t, service.InitializationError())
	})
}

func TestMonitoringService_ExporterHandler(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return 503 when not initialized", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, &Config{Enabled: false, Path: "/metrics"})
		require.NoError(t, err)
		w := httptest.NewRecorder()
		service.ExporterHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Monitoring service not initialized")
	})
	t.Run("Should expose HTTP and workflow metrics when initialized", func(t *testing.T) {
		service, err := NewMonitoringService(ctx, &Config{Enabled: true, Path: "/metrics"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = service.Shutdown(ctx) })

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(service.GinMiddleware())
		r.GET("/customers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET(service.Path(), gin.WrapH(service.ExporterHandler()))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/customers/1", http.NoBody))
		service.Workflow().RecordReview(ctx, "REJECTED", core.Conflict(errors.New("lost")))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		body := w.Body.String()
		assert.Contains(t, body, "defaultdesk_http_requests_total")
		assert.Contains(t, body, `path="/customers/:id"`)
		assert.Contains(t, body, "defaultdesk_workflow_reviews_total")
	})
}

func TestNewMonitoringServiceWithFallback(t *testing.T) {
	ctx := context.Background()
	t.Run("Should degrade to a no-op service on invalid config", func(t *testing.T) {
		service := NewMonitoringServiceWithFallback(ctx, &Config{Enabled: true, Path: "invalid-path"})
		require.NotNil(t, service)
		assert.False(t, service.IsInitialized())
		assert.Error(t, service.InitializationError())
		assert.NotNil(t, service.Meter())
		assert.NotPanics(t, func() { service.Workflow().RecordUpload(ctx, 10, nil) })
	})
	t.Run("Should handle nil config", func(t *testing.T) {
		service := NewMonitoringServiceWithFallback(ctx, nil)
		require.NotNil(t, service)
		assert.False(t, service.IsInitialized())
		assert.NoError(t, service.InitializationError())
	})
}
