//go:build !whisper_cpp

package whisper

import (
	"context"
	"errors"

	"github.com/tarjama-live/tarjama/pkg/provider/asr"
)

// Compile-time assertion that Native satisfies asr.Engine.
var _ asr.Engine = (*Native)(nil)

// Native is the stub used when the binary is built without the whisper_cpp
// tag. Construction succeeds so configuration can be validated uniformly;
// Load fails, which the pipeline treats as a non-fatal model-load failure.
type Native struct{}

// NativeOption is a functional option for configuring a Native engine.
type NativeOption func(*Native)

// WithNativeThreads is accepted and ignored by the stub.
func WithNativeThreads(uint) NativeOption { return func(*Native) {} }

// NewNative creates a stub Native engine.
func NewNative(modelPath string, _ ...NativeOption) (*Native, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	return &Native{}, nil
}

// Load always fails: the binary was compiled without whisper.cpp support.
func (e *Native) Load(context.Context) error {
	return errors.New("whisper: built without whisper_cpp tag; native inference unavailable")
}

// Transcribe always fails on the stub.
func (e *Native) Transcribe(context.Context, []float32, string) (string, error) {
	return "", errors.New("whisper: built without whisper_cpp tag")
}

// Close is a no-op on the stub.
func (e *Native) Close() error { return nil }
