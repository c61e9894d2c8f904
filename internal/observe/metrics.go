// Package observe provides application-wide observability primitives for
// Kavach: OpenTelemetry metrics, tracing helpers, structured logging, and
// HTTP middleware that ties them together.
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

// meterName is the instrumentation scope name used for all Kavach metrics.
const meterName = "github.com/rohitpanda045/Kavach-AI-HackFiesta"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// AnalysisDuration tracks quick-scan classification latency.
	AnalysisDuration metric.Float64Histogram

	// DeepAnalysisDuration tracks thinking-mode explanation latency.
	DeepAnalysisDuration metric.Float64Histogram

	// ChatDuration tracks guardian chat reply latency.
	ChatDuration metric.Float64Histogram

	// SynthesisDuration tracks speech synthesis latency.
	SynthesisDuration metric.Float64Histogram

	// --- Counters ---

	// AnalysisRequests counts analysis submissions. Use with attributes:
	//   attribute.String("risk_level", ...), attribute.String("status", ...)
	AnalysisRequests metric.Int64Counter

	// AlertsFired counts audible alert tones. Use with attribute:
	//   attribute.String("category", ...)
	AlertsFired metric.Int64Counter

	// PlaybackSessions counts started narration sessions.
	PlaybackSessions metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActivePlayback tracks the number of live narration sessions (0 or 1).
	ActivePlayback metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for model-call and synthesis latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalysisDuration, err = m.Float64Histogram("kavach.analysis.duration",
		metric.WithDescription("Latency of quick-scan classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DeepAnalysisDuration, err = m.Float64Histogram("kavach.deep_analysis.duration",
		metric.WithDescription("Latency of thinking-mode deep analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ChatDuration, err = m.Float64Histogram("kavach.chat.duration",
		metric.WithDescription("Latency of guardian chat replies."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("kavach.synthesis.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.AnalysisRequests, err = m.Int64Counter("kavach.analysis.requests",
		metric.WithDescription("Total analysis submissions by risk level and status."),
	); err != nil {
		return nil, err
	}
	if met.AlertsFired, err = m.Int64Counter("kavach.alerts.fired",
		metric.WithDescription("Total audible alert tones by category."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackSessions, err = m.Int64Counter("kavach.playback.sessions",
		metric.WithDescription("Total started narration sessions."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("kavach.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActivePlayback, err = m.Int64UpDownCounter("kavach.active_playback",
		metric.WithDescription("Number of live narration sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("kavach.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalysisRequest is a convenience method that records an analysis
// submission with the standard attribute set.
func (m *Metrics) RecordAnalysisRequest(ctx context.Context, riskLevel, status string) {
	m.AnalysisRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("risk_level", riskLevel),
			attribute.String("status", status),
		),
	)
}

// RecordAlert is a convenience method that records a fired alert tone.
func (m *Metrics) RecordAlert(ctx context.Context, category string) {
	m.AlertsFired.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
