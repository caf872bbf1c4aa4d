// Package observe holds the OpenTelemetry instruments of the concierge:
// how questions are resolved, how the hosted endpoints behave, and how many
// sessions are open. Metrics are exported for Prometheus scraping through
// [InitProvider]; tests build their own [Metrics] with [NewMetrics] and a
// manual reader.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/zhouzirui/park-concierge/backend"

// Metrics groups every instrument. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Resolutions counts answered questions by source (FAQ or AI).
	Resolutions metric.Int64Counter

	// CompletionDuration tracks chat-completion round trips.
	CompletionDuration metric.Float64Histogram

	// CompletionErrors counts failed completions by provider and kind.
	CompletionErrors metric.Int64Counter

	// SpeechDuration tracks text-to-speech round trips.
	SpeechDuration metric.Float64Histogram

	// SpeechRequests counts syntheses by status (ok or error).
	SpeechRequests metric.Int64Counter

	// ActiveSessions tracks open chat sessions.
	ActiveSessions metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates all instruments from the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Resolutions, err = m.Int64Counter("concierge.resolutions",
		metric.WithDescription("Answered questions by resolution source."),
	); err != nil {
		return nil, err
	}
	if met.CompletionDuration, err = m.Float64Histogram("concierge.completion.duration",
		metric.WithDescription("Latency of chat-completion calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CompletionErrors, err = m.Int64Counter("concierge.completion.errors",
		metric.WithDescription("Failed chat-completion calls by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.SpeechDuration, err = m.Float64Histogram("concierge.speech.duration",
		metric.WithDescription("Latency of text-to-speech calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeechRequests, err = m.Int64Counter("concierge.speech.requests",
		metric.WithDescription("Text-to-speech calls by status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("concierge.active_sessions",
		metric.WithDescription("Number of open chat sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance bound to the global
// meter provider.
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

// RecordResolution counts one answered question.
func (m *Metrics) RecordResolution(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.Resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordCompletion records a completion round trip. kind is empty on success.
func (m *Metrics) RecordCompletion(ctx context.Context, provider, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CompletionDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("provider", provider)))
	if kind != "" {
		m.CompletionErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		))
	}
}

// RecordSpeech records a synthesis round trip.
func (m *Metrics) RecordSpeech(ctx context.Context, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SpeechDuration.Record(ctx, elapsed.Seconds())
	m.SpeechRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// SessionOpened increments the open-session gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
}

// SessionClosed decrements the open-session gauge.
func (m *Metrics) SessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}
