// Package observe provides application-wide observability primitives for
// tarjama: OpenTelemetry metrics and the Prometheus exporter bridge that
// serves them.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter is installed via [InitProvider] so that metrics can be scraped
// from the standard /metrics endpoint. Tests should use [NewMetrics] with a
// private [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tarjama metrics.
const meterName = "github.com/tarjama-live/tarjama"

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ASRDuration tracks per-utterance transcription latency.
	ASRDuration metric.Float64Histogram

	// TranslateDuration tracks per-utterance translation latency.
	TranslateDuration metric.Float64Histogram

	// UtteranceLength tracks the audio duration of finalised utterances.
	UtteranceLength metric.Float64Histogram

	// Utterances counts utterances emitted by the segmentation loop.
	Utterances metric.Int64Counter

	// FramesDropped counts audio frames lost to frame-queue overflow.
	FramesDropped metric.Int64Counter

	// SegmentsDropped counts utterances rejected by a full segment queue.
	SegmentsDropped metric.Int64Counter

	// ProviderErrors counts ASR and translation failures. Use with attribute:
	//   attribute.String("kind", "asr"|"translate")
	ProviderErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// batch speech inference on CPU.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ASRDuration, err = m.Float64Histogram("tarjama.asr.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("tarjama.translate.duration",
		metric.WithDescription("Latency of text translation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.UtteranceLength, err = m.Float64Histogram("tarjama.utterance.length",
		metric.WithDescription("Audio duration of finalised utterances."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("tarjama.utterances",
		metric.WithDescription("Total utterances emitted by the segmentation loop."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("tarjama.frames.dropped",
		metric.WithDescription("Audio frames lost to frame-queue overflow."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsDropped, err = m.Int64Counter("tarjama.segments.dropped",
		metric.WithDescription("Utterances rejected by a full segment queue."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("tarjama.provider.errors",
		metric.WithDescription("ASR and translation failures by kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Default creates a [Metrics] bound to the global meter provider. Before
// [InitProvider] runs this yields no-op instruments, which is the intended
// behaviour for tests and for runs with metrics disabled.
func Default() *Metrics {
	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		// Instrument creation on the global provider only fails on invalid
		// instrument names, which is a programming error.
		panic(err)
	}
	return m
}
