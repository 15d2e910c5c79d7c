package ratelimit

import (
	"context"
	"sync"

	monitoringmetrics "github.com/compozy/defaultdesk/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	rateLimitBlocksTotal metric.Int64Counter
	metricsOnce          sync.Once
)

// InitMetrics initializes rate limiting metrics
func InitMetrics(meter metric.Meter) error {
	var err error
	metricsOnce.Do(func() {
		rateLimitBlocksTotal, err = meter.Int64Counter(
			monitoringmetrics.MetricNameWithSubsystem("ratelimit", "blocks_total"),
			metric.WithDescription("Total number of requests blocked by rate limiting"),
		)
	})
	return err
}

// IncrementBlockedRequests increments the blocks counter
func IncrementBlockedRequests(ctx context.Context, route string) {
	if rateLimitBlocksTotal != nil {
		rateLimitBlocksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
	}
}
