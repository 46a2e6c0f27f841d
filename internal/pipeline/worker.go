// Package pipeline owns the session lifecycle: it wires the capture side to
// the inference side, runs both under one cancellable context, and exposes
// the mode switch that changes translation direction between utterances.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tarjama-live/tarjama/internal/display"
	"github.com/tarjama-live/tarjama/internal/observe"
	"github.com/tarjama-live/tarjama/internal/queue"
	"github.com/tarjama-live/tarjama/internal/translog"
	"github.com/tarjama-live/tarjama/pkg/provider/asr"
	"github.com/tarjama-live/tarjama/pkg/provider/translate"
	"github.com/tarjama-live/tarjama/pkg/types"
)

// Worker drains the segment queue and runs each utterance through
// transcription and translation. One worker serves one session; inference is
// deliberately single-goroutine so utterances reach the display in capture
// order.
type Worker struct {
	in         *queue.DropNewest[types.Utterance]
	engine     asr.Engine
	translator translate.Translator
	display    display.Sink
	transcript translog.Sink
	poll       time.Duration
	metrics    *observe.Metrics
}

// NewWorker creates an inference worker reading from in. transcript may be
// nil when session logging is disabled.
func NewWorker(
	in *queue.DropNewest[types.Utterance],
	engine asr.Engine,
	translator translate.Translator,
	sink display.Sink,
	transcript translog.Sink,
	poll time.Duration,
	metrics *observe.Metrics,
) *Worker {
	if metrics == nil {
		metrics = observe.Default()
	}
	return &Worker{
		in:         in,
		engine:     engine,
		translator: translator,
		display:    sink,
		transcript: transcript,
		poll:       poll,
		metrics:    metrics,
	}
}

// Run loads the ASR engine and processes utterances until ctx is cancelled.
// A load failure disables this worker but is not fatal to the process: the
// error is returned for logging and the capture side keeps running against a
// queue that will fill and drop.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.engine.Load(ctx); err != nil {
		w.metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "asr")))
		return err
	}
	defer func() {
		if err := w.engine.Close(); err != nil {
			slog.Warn("asr engine close error", "err", err)
		}
	}()

	slog.Info("inference worker started")
	for {
		if ctx.Err() != nil {
			return nil
		}
		u, ok := w.in.Pop(ctx, w.poll)
		if !ok {
			continue
		}
		w.handle(ctx, u)
	}
}

// handle runs one utterance end to end. Provider failures are logged and the
// utterance abandoned; the next utterance starts clean.
func (w *Worker) handle(ctx context.Context, u types.Utterance) {
	text, err := w.transcribe(ctx, u)
	if err != nil {
		slog.Error("transcription failed", "err", err, "mode", u.Mode, "duration", u.Duration)
		return
	}
	if text == "" {
		slog.Debug("empty transcription, skipping", "duration", u.Duration)
		return
	}
	slog.Info("transcribed", "mode", u.Mode, "text", text)

	translated := w.translate(ctx, text, u.Mode)
	if translated != "" {
		w.display.Show(translated)
	}

	// The session transcript is always the English side of the exchange.
	if w.transcript != nil {
		if u.Mode == types.ModeENToAR {
			w.transcript.Log(text)
		} else {
			w.transcript.Log(translated)
		}
	}
}

func (w *Worker) transcribe(ctx context.Context, u types.Utterance) (string, error) {
	start := time.Now()
	text, err := w.engine.Transcribe(ctx, u.Samples, u.Mode.SourceLanguage())
	w.metrics.ASRDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		w.metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "asr")))
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// translate converts text per mode. A backend failure yields "" after
// logging: the caption is lost but the session continues.
func (w *Worker) translate(ctx context.Context, text string, mode types.Mode) string {
	start := time.Now()
	translated, err := w.translator.Translate(ctx, text, mode)
	w.metrics.TranslateDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		w.metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "translate")))
		slog.Error("translation failed", "err", err, "mode", mode)
		return ""
	}
	return strings.TrimSpace(translated)
}
