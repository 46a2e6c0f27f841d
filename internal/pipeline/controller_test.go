package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tarjama-live/tarjama/internal/queue"
	asrmock "github.com/tarjama-live/tarjama/pkg/provider/asr/mock"
	trmock "github.com/tarjama-live/tarjama/pkg/provider/translate/mock"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// fakeRunner stands in for the capture worker: it runs until cancelled.
type fakeRunner struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (r *fakeRunner) Run(ctx context.Context) error {
	r.started.Store(true)
	<-ctx.Done()
	r.stopped.Store(true)
	return nil
}

// stuckRunner ignores cancellation entirely.
type stuckRunner struct{}

func (stuckRunner) Run(ctx context.Context) error {
	select {}
}

func newTestController(r Runner) *Controller {
	in := queue.NewDropNewest[types.Utterance](5)
	w := NewWorker(in, &asrmock.Engine{}, &trmock.Translator{}, &memorySink{}, nil, 10*time.Millisecond, nil)
	return NewController(r, w, types.ModeENToAR)
}

func TestController_StartStop(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	c := newTestController(r)

	if c.State() != StateCreated {
		t.Fatalf("state=%s, want created", c.State())
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.State() != StateRunning {
		t.Errorf("state=%s, want running", c.State())
	}

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}

	if c.State() != StateStopped {
		t.Errorf("state=%s, want stopped", c.State())
	}
	if !r.started.Load() || !r.stopped.Load() {
		t.Errorf("runner started=%v stopped=%v, want both true", r.started.Load(), r.stopped.Load())
	}
}

func TestController_DoubleStartRejected(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeRunner{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer c.Stop()

	if err := c.Start(context.Background()); err == nil {
		t.Error("second Start must fail")
	}
}

func TestController_StopBeforeStart(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeRunner{})
	c.Stop() // must not panic or hang
	if c.State() != StateStopped {
		t.Errorf("state=%s, want stopped", c.State())
	}
	if err := c.Start(context.Background()); err == nil {
		t.Error("Start after Stop must fail")
	}
}

func TestController_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeRunner{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Stop()
	c.Stop() // second call is a no-op
	if c.State() != StateStopped {
		t.Errorf("state=%s, want stopped", c.State())
	}
}

func TestController_StopAbandonsStuckSide(t *testing.T) {
	t.Parallel()

	c := newTestController(stuckRunner{})
	c.joinTimeout = 50 * time.Millisecond
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop hung on a stuck runner")
	}
}

func TestController_ModeRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeRunner{})
	if got := c.Mode(); got != types.ModeENToAR {
		t.Errorf("initial mode=%q, want EN->AR", got)
	}
	if err := c.SetMode(types.ModeARToEN); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if got := c.Mode(); got != types.ModeARToEN {
		t.Errorf("mode=%q, want AR->EN", got)
	}
	if err := c.SetMode(c.Mode().Toggle()); err != nil {
		t.Fatalf("SetMode toggle: %v", err)
	}
	if got := c.Mode(); got != types.ModeENToAR {
		t.Errorf("mode=%q, want EN->AR after toggle", got)
	}
}

func TestController_InvalidModeRejected(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeRunner{})
	if err := c.SetMode(types.Mode("EN->FR")); err == nil {
		t.Error("SetMode must reject unknown directions")
	}
	if got := c.Mode(); got != types.ModeENToAR {
		t.Errorf("mode=%q, want unchanged EN->AR", got)
	}
}
