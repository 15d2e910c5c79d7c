package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func init() {
	logger.InitForTests()
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	ResetMetricsForTesting()
	t.Cleanup(ResetMetricsForTesting)
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	r := gin.New()
	r.Use(HTTPMetrics(meter))
	r.GET("/applications/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/applications/:id/review", func(c *gin.Context) { c.Status(http.StatusConflict) })
	return r, reader
}

func requestCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "defaultdesk_http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				method, _ := dp.Attributes.Value(attribute.Key("method"))
				path, _ := dp.Attributes.Value(attribute.Key("path"))
				status, _ := dp.Attributes.Value(attribute.Key("status_code"))
				out[method.AsString()+" "+path.AsString()+" "+status.AsString()] = dp.Value
			}
		}
	}
	return out
}

func TestHTTPMetrics(t *testing.T) {
	t.Run("Should label requests by route template and status", func(t *testing.T) {
		r, reader := newRouter(t)
		for _, id := range []string{"a", "b"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/applications/"+id, http.NoBody))
		}
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/applications/a/review", http.NoBody))

		assert.Equal(t, map[string]int64{
			"GET /applications/:id 200":         2,
			"POST /applications/:id/review 409": 1,
		}, requestCounts(t, reader))
	})
	t.Run("Should group unknown routes under unmatched", func(t *testing.T) {
		r, reader := newRouter(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, map[string]int64{"GET unmatched 404": 1}, requestCounts(t, reader))
	})
	t.Run("Should pass through when no meter is configured", func(t *testing.T) {
		ResetMetricsForTesting()
		r := gin.New()
		r.Use(HTTPMetrics(nil))
		r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
