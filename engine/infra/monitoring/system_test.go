package monitoring

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestSystemMetrics(t *testing.T) {
	t.Run("Should record build info and uptime once", func(t *testing.T) {
		ResetSystemMetricsForTesting()
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
		ctx := context.Background()
		InitSystemMetrics(ctx, meter)
		InitSystemMetrics(ctx, meter)

		metrics := collect(t, reader)
		build, ok := metrics["defaultdesk_build_info"]
		require.True(t, ok)
		gauge, ok := build.Data.(metricdata.Gauge[float64])
		require.True(t, ok)
		require.Len(t, gauge.DataPoints, 1)
		assert.Equal(t, float64(1), gauge.DataPoints[0].Value)
		assert.Equal(t, runtime.Version(), attrString(t, gauge.DataPoints[0].Attributes, "go_version"))
		assert.NotEmpty(t, attrString(t, gauge.DataPoints[0].Attributes, "version"))

		uptime, ok := metrics["defaultdesk_uptime_seconds"]
		require.True(t, ok)
		up, ok := uptime.Data.(metricdata.Gauge[float64])
		require.True(t, ok)
		require.Len(t, up.DataPoints, 1)
		assert.GreaterOrEqual(t, up.DataPoints[0].Value, float64(0))
		assert.Zero(t, up.DataPoints[0].Attributes.Len())
	})
}
