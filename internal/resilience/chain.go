package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tarjama-live/tarjama/pkg/provider/translate"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// ErrAllFailed is returned by [Chain.Translate] when every backend fails or
// sits behind an open breaker.
var ErrAllFailed = errors.New("resilience: all translation backends failed")

type chainEntry struct {
	name    string
	t       translate.Translator
	breaker *Breaker
}

// Chain is a [translate.Translator] that tries backends in registration
// order, each behind its own [Breaker]. A tripped primary is skipped without
// paying its timeout, so a dead translation server degrades captions instead
// of stalling them.
type Chain struct {
	entries []chainEntry
	cfg     BreakerConfig
}

// Compile-time assertion that Chain implements translate.Translator.
var _ translate.Translator = (*Chain)(nil)

// NewChain creates a chain with primary as the preferred backend. cfg.Name
// is overridden per entry.
func NewChain(name string, primary translate.Translator, cfg BreakerConfig) *Chain {
	c := &Chain{cfg: cfg}
	c.Add(name, primary)
	return c
}

// Add appends a fallback backend, tried after everything registered before
// it.
func (c *Chain) Add(name string, t translate.Translator) {
	cfg := c.cfg
	cfg.Name = "translate/" + name
	c.entries = append(c.entries, chainEntry{name: name, t: t, breaker: NewBreaker(cfg)})
}

// Translate tries each backend until one succeeds. Open breakers are skipped.
// When every backend fails, the last error is wrapped in [ErrAllFailed].
func (c *Chain) Translate(ctx context.Context, text string, mode types.Mode) (string, error) {
	var lastErr error
	for _, e := range c.entries {
		var out string
		err := e.breaker.Do(func() error {
			var inner error
			out, inner = e.t.Translate(ctx, text, mode)
			return inner
		})
		if err == nil {
			return out, nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping translation backend, breaker open", "backend", e.name)
		} else {
			slog.Warn("translation backend failed, trying next", "backend", e.name, "err", err)
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
