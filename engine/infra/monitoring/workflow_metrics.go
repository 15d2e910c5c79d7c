package monitoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/defaultdesk/engine/core"
	monitoringmetrics "github.com/compozy/defaultdesk/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	labelDecision = "decision"
	labelOutcome  = "outcome"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

// WorkflowMetrics counts reviews and uploads by outcome. A zero value
// records nothing.
type WorkflowMetrics struct {
	reviews     metric.Int64Counter
	uploads     metric.Int64Counter
	uploadBytes metric.Float64Histogram
}

func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	if meter == nil {
		return &WorkflowMetrics{}, nil
	}
	reviews, err := meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("workflow", "reviews_total"),
		metric.WithDescription("Application reviews by decision and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reviews counter: %w", err)
	}
	uploads, err := meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("workflow", "uploads_total"),
		metric.WithDescription("Attachment uploads by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create uploads counter: %w", err)
	}
	uploadBytes, err := meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem("workflow", "upload_size_bytes"),
		metric.WithDescription("Size of stored attachments"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.UploadSizeBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create upload size histogram: %w", err)
	}
	return &WorkflowMetrics{reviews: reviews, uploads: uploads, uploadBytes: uploadBytes}, nil
}

func (m *WorkflowMetrics) RecordReview(ctx context.Context, decision string, err error) {
	if m == nil || m.reviews == nil {
		return
	}
	m.reviews.Add(ctx, 1, metric.WithAttributes(
		attribute.String(labelDecision, decisionLabel(decision)),
		attribute.String(labelOutcome, outcomeOf(err)),
	))
}

func (m *WorkflowMetrics) RecordUpload(ctx context.Context, size int64, err error) {
	if m == nil || m.uploads == nil {
		return
	}
	outcome := outcomeOf(err)
	m.uploads.Add(ctx, 1, metric.WithAttributes(attribute.String(labelOutcome, outcome)))
	if err == nil && m.uploadBytes != nil {
		m.uploadBytes.Record(ctx, float64(size))
	}
}

// decisionLabel keeps unbounded client input out of label values.
func decisionLabel(decision string) string {
	switch d := strings.ToUpper(strings.TrimSpace(decision)); d {
	case "APPROVED", "REJECTED":
		return d
	default:
		return "invalid"
	}
}

// outcomeOf labels failures by error code so 409s and 504s stay distinguishable.
func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if code := core.CodeOf(err); code != "" {
		return strings.ToLower(code)
	}
	return outcomeError
}
