// Package observe provides observability primitives for the voice search
// server: OpenTelemetry metrics, tracing helpers, and HTTP middleware tying
// them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported via
// a Prometheus bridge (see [InitProvider]) so that the standard /metrics
// endpoint keeps working. Tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all voicesearch metrics.
const meterName = "github.com/Zeeshan138063/voice-rag-search-assistant"

// Metrics holds the metric instruments for the application. All fields are
// safe for concurrent use.
type Metrics struct {
	// CaptureDuration tracks microphone capture length per recording.
	CaptureDuration metric.Float64Histogram

	// TranscriptionDuration tracks speech-to-text latency.
	TranscriptionDuration metric.Float64Histogram

	// SearchDuration tracks vector search latency.
	SearchDuration metric.Float64Histogram

	// IngestBatchDuration tracks the latency of one record upsert batch.
	IngestBatchDuration metric.Float64Histogram

	// ProviderRequests counts external service calls. Attributes:
	//   provider (e.g. "openai", "pinecone"), kind ("stt", "search"),
	//   status ("ok", "error").
	ProviderRequests metric.Int64Counter

	// Recordings counts finished recording attempts. Attribute:
	//   outcome ("transcribed", "empty", "capture_error", "stt_error").
	Recordings metric.Int64Counter

	// ActiveRecordings tracks recordings currently in flight (0 or 1).
	ActiveRecordings metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request processing time. Attributes:
	//   method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries (seconds) sized for external
// service calls that range from sub-second searches to minute-long
// transcriptions.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CaptureDuration, err = m.Float64Histogram("voicesearch.capture.duration",
		metric.WithDescription("Length of captured recordings."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("voicesearch.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SearchDuration, err = m.Float64Histogram("voicesearch.search.duration",
		metric.WithDescription("Latency of vector search queries."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IngestBatchDuration, err = m.Float64Histogram("voicesearch.ingest.batch.duration",
		metric.WithDescription("Latency of one record ingestion batch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ProviderRequests, err = m.Int64Counter("voicesearch.provider.requests",
		metric.WithDescription("External service calls by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.Recordings, err = m.Int64Counter("voicesearch.recordings",
		metric.WithDescription("Finished recording attempts by outcome."),
	); err != nil {
		return nil, err
	}

	if met.ActiveRecordings, err = m.Int64UpDownCounter("voicesearch.active_recordings",
		metric.WithDescription("Recordings currently in flight."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("voicesearch.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] built on the global
// meter provider, creating it on first call. Panics if instrument creation
// fails, which cannot happen with the global provider.
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

// RecordProviderRequest records one external call with the standard
// attribute set. status should be "ok" or "error".
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordRecording records one finished recording attempt.
func (m *Metrics) RecordRecording(ctx context.Context, outcome string) {
	m.Recordings.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}
