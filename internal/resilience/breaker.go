// Package resilience protects the inference loop from a misbehaving
// translation backend.
//
// [Breaker] is a three-state circuit breaker (closed → open → half-open)
// tuned for the per-utterance call pattern: a backend that fails repeatedly
// is bypassed quickly so captions fail fast instead of stalling the queue
// behind request timeouts. [Chain] composes translators with per-backend
// breakers so a tripped primary falls through to the next backend.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker refuses calls.
var ErrOpen = errors.New("resilience: breaker open")

// BreakerConfig holds the tuning knobs for a [Breaker]. Zero values select
// the defaults noted on each field.
type BreakerConfig struct {
	// Name labels the breaker in log messages.
	Name string

	// Trip is the number of consecutive failures that opens the breaker.
	// Default: 3.
	Trip int

	// Cooldown is how long the breaker stays open before allowing one probe
	// call. Default: 30s.
	Cooldown time.Duration
}

// Breaker is a circuit breaker with a single-probe half-open state: after
// the cooldown, exactly one call is let through — success closes the
// breaker, failure restarts the cooldown.
type Breaker struct {
	name     string
	trip     int
	cooldown time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool
}

// NewBreaker creates a closed [Breaker].
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Trip <= 0 {
		cfg.Trip = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{name: cfg.Name, trip: cfg.Trip, cooldown: cfg.Cooldown}
}

// Do runs fn unless the breaker is open, in which case it returns [ErrOpen]
// without calling fn.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.open {
		if time.Since(b.openedAt) < b.cooldown || b.probing {
			b.mu.Unlock()
			return ErrOpen
		}
		// Cooldown elapsed: admit this call as the probe.
		b.probing = true
		slog.Info("breaker probing", "name", b.name)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	if b.probing {
		b.probing = false
		b.openedAt = time.Now()
		slog.Warn("breaker re-opened after failed probe", "name", b.name)
		return
	}
	b.failures++
	if !b.open && b.failures >= b.trip {
		b.open = true
		b.openedAt = time.Now()
		slog.Warn("breaker opened", "name", b.name, "failures", b.failures)
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	if b.open {
		slog.Info("breaker closed after successful probe", "name", b.name)
	}
	b.open = false
	b.probing = false
	b.failures = 0
}

// Open reports whether the breaker currently refuses calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && (time.Since(b.openedAt) < b.cooldown || b.probing)
}
