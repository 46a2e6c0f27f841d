// Package mock provides a test double for the translate package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/tarjama-live/tarjama/pkg/provider/translate"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// TranslateCall records a single invocation of Translator.Translate.
type TranslateCall struct {
	// Text is the source text passed to Translate.
	Text string

	// Mode is the direction passed to Translate.
	Mode types.Mode
}

// Translator is a mock implementation of translate.Translator.
type Translator struct {
	mu sync.Mutex

	// Result is returned by Translate when Func is nil.
	Result string

	// Err, if non-nil, is returned by Translate.
	Err error

	// Func, if non-nil, overrides the scripted Result/Err behaviour.
	Func func(ctx context.Context, text string, mode types.Mode) (string, error)

	// TranslateCalls records every invocation of Translate.
	TranslateCalls []TranslateCall
}

// Translate records the call and returns the scripted result.
func (t *Translator) Translate(ctx context.Context, text string, mode types.Mode) (string, error) {
	t.mu.Lock()
	t.TranslateCalls = append(t.TranslateCalls, TranslateCall{Text: text, Mode: mode})
	fn := t.Func
	result, err := t.Result, t.Err
	t.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, mode)
	}
	return result, err
}

// Calls returns a copy of the recorded calls. Thread-safe.
func (t *Translator) Calls() []TranslateCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranslateCall, len(t.TranslateCalls))
	copy(out, t.TranslateCalls)
	return out
}

// Ensure Translator implements translate.Translator at compile time.
var _ translate.Translator = (*Translator)(nil)
