// Package mock provides a test double for the asr package interfaces.
//
// Use Engine to script transcription results and inspect which utterances
// were delivered:
//
//	eng := &mock.Engine{Text: "hello"}
//	_ = eng.Load(ctx)
//	got, _ := eng.Transcribe(ctx, samples, "en")
package mock

import (
	"context"
	"sync"

	"github.com/tarjama-live/tarjama/pkg/provider/asr"
)

// TranscribeCall records a single invocation of Engine.Transcribe.
type TranscribeCall struct {
	// SampleCount is the length of the sample slice passed to Transcribe.
	SampleCount int

	// Language is the language hint passed to Transcribe.
	Language string
}

// Engine is a mock implementation of asr.Engine.
type Engine struct {
	mu sync.Mutex

	// Text is returned by Transcribe when TranscribeFunc is nil.
	Text string

	// LoadErr, if non-nil, is returned by Load.
	LoadErr error

	// TranscribeErr, if non-nil, is returned by Transcribe.
	TranscribeErr error

	// TranscribeFunc, if non-nil, overrides the scripted Text/TranscribeErr
	// behaviour entirely.
	TranscribeFunc func(ctx context.Context, samples []float32, language string) (string, error)

	// LoadCalls counts invocations of Load.
	LoadCalls int

	// TranscribeCalls records every invocation of Transcribe.
	TranscribeCalls []TranscribeCall

	// Closed reports whether Close was called.
	Closed bool
}

// Load records the call and returns LoadErr.
func (e *Engine) Load(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.LoadCalls++
	return e.LoadErr
}

// Transcribe records the call and returns the scripted result.
func (e *Engine) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	e.mu.Lock()
	e.TranscribeCalls = append(e.TranscribeCalls, TranscribeCall{
		SampleCount: len(samples),
		Language:    language,
	})
	fn := e.TranscribeFunc
	text, err := e.Text, e.TranscribeErr
	e.mu.Unlock()

	if fn != nil {
		return fn(ctx, samples, language)
	}
	return text, err
}

// Close marks the engine closed. Safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Closed = true
	return nil
}

// Calls returns a copy of the recorded Transcribe calls. Thread-safe.
func (e *Engine) Calls() []TranscribeCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]TranscribeCall, len(e.TranscribeCalls))
	copy(out, e.TranscribeCalls)
	return out
}

// Ensure Engine implements asr.Engine at compile time.
var _ asr.Engine = (*Engine)(nil)
