// Package types defines the shared types used across all tarjama packages.
//
// These types form the lingua franca between the capture worker, the
// segmentation state machine, the inference worker, and the providers. They
// are intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

import (
	"fmt"
	"time"
)

// Mode is a translation direction. The source language of the spoken audio is
// implied by the direction: EN->AR means the speaker is speaking English.
type Mode string

const (
	// ModeENToAR transcribes English speech and translates it to Arabic.
	ModeENToAR Mode = "EN->AR"

	// ModeARToEN transcribes Arabic speech and translates it to English.
	ModeARToEN Mode = "AR->EN"
)

// IsValid reports whether m is one of the two recognised directions.
func (m Mode) IsValid() bool {
	return m == ModeENToAR || m == ModeARToEN
}

// SourceLanguage returns the BCP-47 code of the language being spoken,
// used as the transcription hint for the ASR engine.
func (m Mode) SourceLanguage() string {
	if m == ModeARToEN {
		return "ar"
	}
	return "en"
}

// TargetLanguage returns the BCP-47 code of the language captions are
// rendered in.
func (m Mode) TargetLanguage() string {
	if m == ModeARToEN {
		return "en"
	}
	return "ar"
}

// Toggle returns the opposite direction.
func (m Mode) Toggle() Mode {
	if m == ModeARToEN {
		return ModeENToAR
	}
	return ModeARToEN
}

// ParseMode converts a string into a Mode, returning an error for anything
// other than the two recognised directions.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("types: invalid mode %q (valid: %q, %q)", s, ModeENToAR, ModeARToEN)
	}
	return m, nil
}

// Utterance is one contiguous speech span, bounded by qualifying silence.
// It is produced by the segmentation loop and consumed exactly once by the
// inference worker; the sample slice must not be mutated after creation.
type Utterance struct {
	// Samples is the concatenated mono PCM of every speech frame in the span,
	// normalised float32 in [-1, 1], in capture order.
	Samples []float32

	// Mode is the translation direction that was active when the utterance
	// was finalised. The inference worker uses this tag rather than the
	// live mode so that a direction change never reinterprets audio that was
	// already segmented.
	Mode Mode

	// Start marks when the first speech frame of the span was dequeued.
	Start time.Time

	// Duration is the audio length of the span at the configured sample rate.
	Duration time.Duration
}
