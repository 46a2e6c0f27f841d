// Package capture owns the microphone for the lifetime of a session and turns
// the raw input stream into discrete utterances.
//
// The package runs two cooperating pieces: a portaudio callback that copies
// each driver buffer into a bounded drop-oldest frame queue, and a processing
// loop that drains the queue and feeds the [Segmenter]. The callback is the
// non-blocking, non-throwing boundary with the audio subsystem — its body is
// a bounded-time copy plus a non-blocking enqueue, nothing else. Everything
// that can take time (energy classification, buffer management, the segment
// push) happens on the processing goroutine.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/tarjama-live/tarjama/internal/observe"
	"github.com/tarjama-live/tarjama/internal/queue"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// Config holds the capture and segmentation parameters.
type Config struct {
	// SampleRate in Hz. Whisper models expect 16000.
	SampleRate int

	// ChunkDuration is the audio length of one device callback block.
	ChunkDuration time.Duration

	// SilenceDuration is the qualifying-silence span that ends an utterance.
	SilenceDuration time.Duration

	// SilenceThreshold is the RMS amplitude below which a frame is silent.
	SilenceThreshold float64

	// FrameQueueCapacity bounds the callback-to-processing queue.
	FrameQueueCapacity int

	// PollInterval bounds how long the processing loop blocks waiting for a
	// frame; it is the responsiveness bound for observing cancellation.
	PollInterval time.Duration
}

// Default returns the capture configuration used when none is supplied.
func Default() Config {
	return Config{
		SampleRate:         16000,
		ChunkDuration:      500 * time.Millisecond,
		SilenceDuration:    800 * time.Millisecond,
		SilenceThreshold:   0.01,
		FrameQueueCapacity: 10,
		PollInterval:       100 * time.Millisecond,
	}
}

// BlockSize returns the number of samples per device callback block.
func (c Config) BlockSize() int {
	return int(c.ChunkDuration.Seconds() * float64(c.SampleRate))
}

// Worker captures microphone audio and emits utterances into out.
//
// The worker is single-shot: create, Run, discard. Run returns when ctx is
// cancelled or the device cannot be opened.
type Worker struct {
	cfg     Config
	frames  *queue.DropOldest[[]float32]
	out     *queue.DropNewest[types.Utterance]
	mode    func() types.Mode
	seg     *Segmenter
	metrics *observe.Metrics
}

// New creates a capture worker. mode is sampled at utterance finalisation to
// tag each utterance with the direction active at capture time. out is owned
// by the pipeline controller; the worker only pushes to it.
func New(cfg Config, out *queue.DropNewest[types.Utterance], mode func() types.Mode, metrics *observe.Metrics) *Worker {
	if metrics == nil {
		metrics = observe.Default()
	}
	return &Worker{
		cfg:     cfg,
		frames:  queue.NewDropOldest[[]float32](cfg.FrameQueueCapacity),
		out:     out,
		mode:    mode,
		seg:     NewSegmenter(cfg.SilenceThreshold, cfg.SilenceDuration, cfg.ChunkDuration),
		metrics: metrics,
	}
}

// Run opens the default input device and processes frames until ctx is
// cancelled. A device open/start failure is returned to the caller and is
// fatal to this worker only — the rest of the pipeline stays alive but
// starved.
func (w *Worker) Run(ctx context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: initialize portaudio: %w", err)
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			slog.Warn("portaudio terminate error", "err", err)
		}
	}()

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(w.cfg.SampleRate), w.cfg.BlockSize(), w.callback)
	if err != nil {
		return fmt.Errorf("capture: open input stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Warn("audio stream close error", "err", err)
		}
	}()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("capture: start input stream: %w", err)
	}
	defer func() {
		if err := stream.Stop(); err != nil {
			slog.Warn("audio stream stop error", "err", err)
		}
	}()

	slog.Info("audio capture started",
		"sample_rate", w.cfg.SampleRate,
		"block_size", w.cfg.BlockSize(),
		"silence_threshold", w.cfg.SilenceThreshold,
		"silence_duration", w.cfg.SilenceDuration,
	)

	w.processLoop(ctx)
	return nil
}

// callback runs on the audio subsystem's thread once per block. It copies
// the driver buffer (which is reused as soon as we return) and enqueues the
// copy without blocking. It must never panic or block on anything the audio
// subsystem depends on.
func (w *Worker) callback(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	if flags&(portaudio.InputOverflow|portaudio.InputUnderflow) != 0 {
		slog.Debug("audio input status", "flags", int(flags))
	}

	frame := make([]float32, len(in))
	copy(frame, in)

	if dropped := w.frames.Push(frame); dropped > 0 {
		w.metrics.FramesDropped.Add(context.Background(), int64(dropped))
	}
}

// processLoop drains the frame queue and drives the segmenter until ctx is
// cancelled. Frames still queued at cancellation are discarded: the queue is
// bounded, so the loss is bounded too.
func (w *Worker) processLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		frame, ok := w.frames.Pop(ctx, w.cfg.PollInterval)
		if !ok {
			continue
		}
		w.process(frame)
	}
}

// process feeds one frame to the segmenter and emits the utterance when a
// silence boundary is confirmed. Overflow of the segment queue follows
// drop-and-warn: the utterance is discarded and the loss is logged, because
// losing finished work should be visible.
func (w *Worker) process(frame []float32) {
	samples, start, ok := w.seg.Feed(frame)
	if !ok {
		return
	}

	u := types.Utterance{
		Samples:  samples,
		Mode:     w.mode(),
		Start:    start,
		Duration: time.Duration(float64(len(samples)) / float64(w.cfg.SampleRate) * float64(time.Second)),
	}

	if !w.out.Push(u) {
		slog.Warn("segment queue full, dropping utterance",
			"duration", u.Duration,
			"mode", u.Mode,
		)
		w.metrics.SegmentsDropped.Add(context.Background(), 1)
		return
	}

	w.metrics.Utterances.Add(context.Background(), 1)
	w.metrics.UtteranceLength.Record(context.Background(), u.Duration.Seconds())
	slog.Debug("utterance emitted", "duration", u.Duration, "mode", u.Mode)
}
