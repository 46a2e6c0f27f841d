package capture

import (
	"testing"
	"time"

	"github.com/tarjama-live/tarjama/internal/queue"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// testWorker builds a worker without opening a device; frames are injected
// straight into process, with the segmenter clock ticking one block per
// frame.
func testWorker(t *testing.T, segCap int) (*Worker, *queue.DropNewest[types.Utterance]) {
	t.Helper()
	out := queue.NewDropNewest[types.Utterance](segCap)
	cfg := Default()
	w := New(cfg, out, func() types.Mode { return types.ModeARToEN }, nil)
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	w.seg.now = clk.tick
	return w, out
}

func frame(amplitude float32, n int) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = amplitude
	}
	return f
}

func TestWorker_ProcessEmitsTaggedUtterance(t *testing.T) {
	t.Parallel()

	w, out := testWorker(t, 5)
	block := w.cfg.BlockSize()

	// Three speech frames, then enough silence to qualify.
	for i := 0; i < 3; i++ {
		w.process(frame(0.5, block))
	}
	w.process(frame(0, block))
	w.process(frame(0, block))

	u, ok := out.Pop(t.Context(), time.Second)
	if !ok {
		t.Fatal("expected an utterance")
	}
	if u.Mode != types.ModeARToEN {
		t.Errorf("mode=%q, want the mode sampled at finalisation", u.Mode)
	}
	if got, want := len(u.Samples), 3*block; got != want {
		t.Errorf("samples=%d, want %d (speech frames only)", got, want)
	}
	if got, want := u.Duration, 1500*time.Millisecond; got != want {
		t.Errorf("duration=%v, want %v", got, want)
	}
}

func TestWorker_SegmentOverflowDropsNewest(t *testing.T) {
	t.Parallel()

	w, out := testWorker(t, 1)
	block := w.cfg.BlockSize()

	emit := func(amplitude float32) {
		w.process(frame(amplitude, block))
		w.process(frame(0, block))
		w.process(frame(0, block))
	}

	emit(0.5) // fills the queue
	emit(0.9) // must be dropped, not replace the first

	if out.Len() != 1 {
		t.Fatalf("queue len=%d, want 1", out.Len())
	}
	u, _ := out.Pop(t.Context(), time.Second)
	if u.Samples[0] != 0.5 {
		t.Errorf("survivor amplitude=%v, want the first utterance kept", u.Samples[0])
	}
}
