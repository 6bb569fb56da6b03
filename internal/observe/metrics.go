// Package observe provides application-wide observability primitives for
// Balss: OpenTelemetry metrics, structured logging hooks, and HTTP middleware
// that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Balss metrics.
const meterName = "github.com/kkarklins/balss"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// ResolveDuration tracks end-to-end resolution latency (fast path plus
	// any escalation).
	ResolveDuration metric.Float64Histogram

	// TeacherDuration tracks escalation-call latency.
	TeacherDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram

	// --- Distributions ---

	// Confidence tracks the fast-path confidence score distribution.
	Confidence metric.Float64Histogram

	// --- Counters ---

	// Resolutions counts resolved requests. Use with attributes:
	//   attribute.String("language", ...), attribute.String("kind", ...),
	//   attribute.String("decision", ...)
	Resolutions metric.Int64Counter

	// TeacherErrors counts escalation failures. Use with attribute:
	//   attribute.String("reason", "timeout"|"unavailable"|"circuit_open")
	TeacherErrors metric.Int64Counter

	// GoldLogErrors counts failed gold-log appends.
	GoldLogErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The fast
// path completes in microseconds; the buckets cover escalation latencies too.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// confidenceBuckets covers the calibrated score band [0.85, 0.95].
var confidenceBuckets = []float64{
	0.85, 0.88, 0.90, 0.92, 0.93, 0.95,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ResolveDuration, err = m.Float64Histogram("balss.resolve.duration",
		metric.WithDescription("End-to-end intent resolution latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TeacherDuration, err = m.Float64Histogram("balss.teacher.duration",
		metric.WithDescription("Escalation resolver call latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("balss.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Confidence, err = m.Float64Histogram("balss.resolve.confidence",
		metric.WithDescription("Fast-path confidence score distribution."),
		metric.WithExplicitBucketBoundaries(confidenceBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Resolutions, err = m.Int64Counter("balss.resolutions",
		metric.WithDescription("Total resolved requests by language, kind, and decision."),
	); err != nil {
		return nil, err
	}
	if met.TeacherErrors, err = m.Int64Counter("balss.teacher.errors",
		metric.WithDescription("Total escalation failures by reason."),
	); err != nil {
		return nil, err
	}
	if met.GoldLogErrors, err = m.Int64Counter("balss.goldlog.errors",
		metric.WithDescription("Total failed gold-log appends."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordResolution records a resolution counter increment with the standard
// attribute set.
func (m *Metrics) RecordResolution(ctx context.Context, language, kind, decision string) {
	m.Resolutions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("kind", kind),
			attribute.String("decision", decision),
		),
	)
}

// RecordTeacherError records an escalation failure counter increment.
func (m *Metrics) RecordTeacherError(ctx context.Context, reason string) {
	m.TeacherErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}
