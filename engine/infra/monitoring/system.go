package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/compozy/defaultdesk/pkg/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	buildInfoMetric = "defaultdesk_build_info"
	uptimeMetric    = "defaultdesk_uptime_seconds"
)

// system instruments are process-wide: one build-info point and one uptime gauge,
// however many times monitoring is initialized.
var system struct {
	mu           sync.Mutex
	once         sync.Once
	buildInfo    metric.Float64Gauge
	registration metric.Registration
	startedAt    time.Time
}

func initSystemMetrics(meter metric.Meter) {
	system.once.Do(func() {
		log := logger.GetDefault()
		var err error
		system.buildInfo, err = meter.Float64Gauge(buildInfoMetric, metric.WithDescription("Build information (value=1)"))
		if err != nil {
			log.Error("Failed to create build info gauge", "error", err)
		}
		uptime, err := meter.Float64ObservableGauge(uptimeMetric, metric.WithDescription("Service uptime in seconds"))
		if err != nil {
			log.Error("Failed to create uptime gauge", "error", err)
			return
		}
		system.startedAt = time.Now()
		system.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveFloat64(uptime, time.Since(system.startedAt).Seconds())
			return nil
		}, uptime)
		if err != nil {
			log.Error("Failed to register uptime callback", "error", err)
		}
	})
}

// InitSystemMetrics registers the uptime gauge and records build info.
func InitSystemMetrics(ctx context.Context, meter metric.Meter) {
	system.mu.Lock()
	defer system.mu.Unlock()
	initSystemMetrics(meter)
	if system.buildInfo == nil {
		return
	}
	info := version.Resolve()
	system.buildInfo.Record(ctx, 1, metric.WithAttributes(
		attribute.String("version", info.Version),
		attribute.String("commit_hash", info.CommitHash),
		attribute.String("go_version", info.GoVersion),
	))
	logger.FromContext(ctx).Debug("System metrics initialized", "version", info.Version, "commit", info.CommitHash)
}

// ResetSystemMetricsForTesting drops the registered instruments so a test can
// initialize against a fresh meter provider.
func ResetSystemMetricsForTesting() {
	system.mu.Lock()
	defer system.mu.Unlock()
	if system.registration != nil {
		if err := system.registration.Unregister(); err != nil {
			logger.GetDefault().Error("Failed to unregister uptime callback", "error", err)
		}
	}
	system.registration = nil
	system.buildInfo = nil
	system.startedAt = time.Time{}
	system.once = sync.Once{}
}
