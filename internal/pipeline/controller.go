package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tarjama-live/tarjama/internal/display"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// State is the controller lifecycle position. Transitions are one-way:
// Created → Running → Stopping → Stopped.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Runner is the capture side as the controller sees it: something that runs
// until its context is cancelled. Implemented by capture.Worker; tests use
// in-memory fakes.
type Runner interface {
	Run(ctx context.Context) error
}

// Controller runs one translation session: a capture Runner producing
// utterances and an inference [Worker] consuming them, joined by the segment
// queue, torn down together by cancelling one context.
//
// The controller also holds the live translation direction. SetMode takes
// effect at the next utterance boundary — audio already segmented keeps the
// direction it was captured under.
type Controller struct {
	capture     Runner
	worker      *Worker
	joinTimeout time.Duration

	state atomic.Int32
	mode  atomic.Value // types.Mode

	cancel      context.CancelFunc
	captureDone chan struct{}
	workerDone  chan struct{}
}

// Compile-time assertion that Controller satisfies the display control
// surface.
var _ display.Control = (*Controller)(nil)

// NewController creates a controller in [StateCreated] with the given initial
// direction.
func NewController(capture Runner, worker *Worker, initial types.Mode) *Controller {
	c := &Controller{
		capture:     capture,
		worker:      worker,
		joinTimeout: 5 * time.Second,
	}
	c.mode.Store(initial)
	return c
}

// Start launches the inference worker and then the capture runner. The
// consumer starts first so a fast first utterance cannot queue against a
// worker that does not exist yet. Returns an error if the controller has
// already been started.
func (c *Controller) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return fmt.Errorf("pipeline: start in state %s", State(c.state.Load()))
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.captureDone = make(chan struct{})
	c.workerDone = make(chan struct{})

	go func() {
		defer close(c.workerDone)
		if err := c.worker.Run(ctx); err != nil {
			slog.Error("inference worker exited", "err", err)
		}
	}()
	go func() {
		defer close(c.captureDone)
		if err := c.capture.Run(ctx); err != nil {
			slog.Error("audio capture exited", "err", err)
		}
	}()

	slog.Info("pipeline started", "mode", c.Mode())
	return nil
}

// Stop cancels the session context and waits for both sides with a bounded
// join. A side that fails to stop in time is logged and abandoned — Stop
// never hangs. Safe to call more than once; only the first call does work.
func (c *Controller) Stop() {
	if c.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
		return
	}
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}

	c.cancel()
	c.join("capture", c.captureDone)
	c.join("inference", c.workerDone)

	c.state.Store(int32(StateStopped))
	slog.Info("pipeline stopped")
}

func (c *Controller) join(name string, done <-chan struct{}) {
	t := time.NewTimer(c.joinTimeout)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		slog.Warn("goroutine did not stop in time, abandoning", "side", name, "timeout", c.joinTimeout)
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Mode returns the live translation direction.
func (c *Controller) Mode() types.Mode {
	return c.mode.Load().(types.Mode)
}

// SetMode changes the translation direction for utterances finalised from
// now on. Rejects anything but the two recognised directions.
func (c *Controller) SetMode(m types.Mode) error {
	if !m.IsValid() {
		return fmt.Errorf("pipeline: invalid mode %q", m)
	}
	prev := c.Mode()
	c.mode.Store(m)
	if prev != m {
		slog.Info("mode changed", "from", prev, "to", m)
	}
	return nil
}
