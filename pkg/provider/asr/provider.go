// Package asr defines the Engine interface for batch speech-to-text backends.
//
// An engine consumes one complete utterance — a mono float32 sample slice at
// the pipeline sample rate — and produces source-language text. Engines are
// batch by design: the segmentation loop has already decided where the
// utterance ends, so there is no streaming session state to manage.
//
// Load is separated from construction because model loading may be slow
// (hundreds of milliseconds to seconds) and must run on the inference
// goroutine, never on the capture path. A Load failure disables transcription
// but must not crash the process.
//
// Implementations must be safe for concurrent use unless documented
// otherwise; the pipeline itself calls Transcribe from a single goroutine.
package asr

import "context"

// Engine is a batch speech-to-text backend.
type Engine interface {
	// Load performs one-time, possibly slow initialisation (model load,
	// server reachability check). It is called exactly once, on the
	// inference goroutine, before any Transcribe call.
	Load(ctx context.Context) error

	// Transcribe runs speech recognition over one utterance. language is the
	// BCP-47 hint for the spoken language (e.g. "en", "ar"). An empty result
	// with a nil error means the engine heard nothing worth transcribing —
	// that is not a failure.
	Transcribe(ctx context.Context, samples []float32, language string) (string, error)

	// Close releases engine resources. Calling Close more than once is safe.
	Close() error
}
