//go:build whisper_cpp

// This file contains the native engine backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/tarjama-live/tarjama/pkg/provider/asr"
)

// Compile-time assertion that Native satisfies asr.Engine.
var _ asr.Engine = (*Native)(nil)

// Native implements asr.Engine by running whisper.cpp in-process. The model
// is loaded once in Load and shared by every Transcribe call; calls are
// serialised with a mutex because whisper.cpp contexts are not safe for
// concurrent processing.
type Native struct {
	modelPath string
	threads   uint

	mu    sync.Mutex
	model whisperlib.Model
}

// NativeOption is a functional option for configuring a Native engine.
type NativeOption func(*Native)

// WithNativeThreads sets the inference thread count. Defaults to the number
// of CPU cores.
func WithNativeThreads(n uint) NativeOption {
	return func(e *Native) {
		if n > 0 {
			e.threads = n
		}
	}
}

// NewNative creates a Native engine for the ggml model at modelPath. The
// model file is not touched until Load.
func NewNative(modelPath string, opts ...NativeOption) (*Native, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	e := &Native{
		modelPath: modelPath,
		threads:   uint(runtime.NumCPU()),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Load reads the ggml model from disk. This is the slow step — seconds for
// the larger model variants — and runs on the inference goroutine.
func (e *Native) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	model, err := whisperlib.New(e.modelPath)
	if err != nil {
		return fmt.Errorf("whisper: load model %q: %w", e.modelPath, err)
	}
	e.mu.Lock()
	e.model = model
	e.mu.Unlock()
	return nil
}

// Transcribe runs batch inference over one utterance with the given language
// hint. A fresh whisper context is created per call.
func (e *Native) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return "", errors.New("whisper: model not loaded")
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	wctx.SetThreads(e.threads)
	if language != "" {
		if err := wctx.SetLanguage(language); err != nil {
			return "", fmt.Errorf("whisper: set language %q: %w", language, err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the loaded model. Safe to call more than once.
func (e *Native) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		err := e.model.Close()
		e.model = nil
		return err
	}
	return nil
}
