// Package translate defines the Translator interface for machine translation
// backends.
//
// A translator consumes source-language text and a direction and produces
// target-language text. Empty input yields empty output without touching the
// backend. Implementations must be safe for concurrent use.
package translate

import (
	"context"
	"strings"

	"github.com/tarjama-live/tarjama/pkg/types"
)

// Translator is a machine translation backend.
type Translator interface {
	// Translate converts text in mode's source language into mode's target
	// language. An empty or whitespace-only input returns "" with no error
	// and no backend call. An empty result with a nil error means the
	// backend had nothing to say — not a failure.
	Translate(ctx context.Context, text string, mode types.Mode) (string, error)
}

// Passthrough is a Translator that returns the input unchanged. Useful for
// captioning-only deployments and for wiring the pipeline before a
// translation server is available.
type Passthrough struct{}

// Translate returns text unchanged (trimmed), regardless of direction.
func (Passthrough) Translate(_ context.Context, text string, _ types.Mode) (string, error) {
	return strings.TrimSpace(text), nil
}

// Compile-time assertion that Passthrough implements Translator.
var _ Translator = Passthrough{}
