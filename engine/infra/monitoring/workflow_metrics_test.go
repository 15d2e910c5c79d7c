package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newWorkflowMetrics(t *testing.T) (*WorkflowMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := NewWorkflowMetrics(meter)
	require.NoError(t, err)
	return m, reader
}

func TestWorkflowMetrics_RecordReview(t *testing.T) {
	t.Run("Should label reviews by decision and error code", func(t *testing.T) {
		m, reader := newWorkflowMetrics(t)
		ctx := context.Background()
		m.RecordReview(ctx, "APPROVED", nil)
		m.RecordReview(ctx, "approved", core.Conflict(errors.New("lost race")))
		m.RecordReview(ctx, "maybe", core.BadRequest(errors.New("bad decision")))

		metric, ok := collect(t, reader)["defaultdesk_workflow_reviews_total"]
		require.True(t, ok)
		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		got := map[string]int64{}
		for _, dp := range sum.DataPoints {
			key := attrString(t, dp.Attributes, "decision") + "/" + attrString(t, dp.Attributes, "outcome")
			got[key] = dp.Value
		}
		assert.Equal(t, map[string]int64{
			"APPROVED/success":    1,
			"APPROVED/conflict":   1,
			"invalid/bad_request": 1,
		}, got)
	})
}

func TestWorkflowMetrics_RecordUpload(t *testing.T) {
	t.Run("Should record size only for stored uploads", func(t *testing.T) {
		m, reader := newWorkflowMetrics(t)
		ctx := context.Background()
		m.RecordUpload(ctx, 2048, nil)
		m.RecordUpload(ctx, 0, errors.New("blob store down"))

		metrics := collect(t, reader)
		uploads, ok := metrics["defaultdesk_workflow_uploads_total"].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		assert.Len(t, uploads.DataPoints, 2)
		sizes, ok := metrics["defaultdesk_workflow_upload_size_bytes"].Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, sizes.DataPoints, 1)
		assert.Equal(t, uint64(1), sizes.DataPoints[0].Count)
		assert.Equal(t, float64(2048), sizes.DataPoints[0].Sum)
	})
	t.Run("Should ignore calls on a zero value", func(t *testing.T) {
		var m *WorkflowMetrics
		assert.NotPanics(t, func() {
			m.RecordUpload(context.Background(), 1, nil)
			(&WorkflowMetrics{}).RecordReview(context.Background(), "REJECTED", nil)
		})
	})
}
