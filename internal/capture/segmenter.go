package capture

import (
	"math"
	"time"
)

// Segmenter carves a stream of fixed-size audio frames into utterances using
// RMS energy thresholding. It is a purely causal state machine with two
// states — accumulating silence (empty buffer) and accumulating speech
// (non-empty buffer) — driven one frame at a time by [Segmenter.Feed].
//
// Energy thresholding is deliberately simple: zero model weight, zero
// inference cost, deterministic and auditable. The trade-off is sensitivity
// to the ambient noise floor, which is a documented limitation rather than a
// defect; the threshold is configurable per venue.
//
// A Segmenter is owned by a single goroutine and is not safe for concurrent
// use.
type Segmenter struct {
	threshold  float64
	silenceDur time.Duration
	frameDur   time.Duration

	buf          [][]float32
	buffered     int // total samples across buf
	silenceStart time.Time // zero while in speech
	spanStart    time.Time // time the first speech frame was fed

	now func() time.Time
}

// NewSegmenter creates a segmenter. threshold is the RMS amplitude below
// which a frame counts as silence (normalised scale, typical 0.01).
// silenceDur is the qualifying-silence duration that ends an utterance.
// frameDur is the audio duration of one frame; the first silent frame is
// backdated by this amount, since the silence it contains began at the start
// of the frame, not at the moment it was dequeued.
func NewSegmenter(threshold float64, silenceDur, frameDur time.Duration) *Segmenter {
	return &Segmenter{
		threshold:  threshold,
		silenceDur: silenceDur,
		frameDur:   frameDur,
		now:        time.Now,
	}
}

// Feed classifies one frame and advances the state machine. When the frame
// confirms a qualifying silence boundary, the buffered speech is concatenated
// and returned with ok=true, and the buffer and silence timer are cleared.
// In every other case ok is false.
//
// Silent frames are never appended to the buffer; a sub-threshold pause that
// ends before qualifying leaves the buffer intact, so brief hesitations merge
// into a single utterance. A single loud frame cancels any accumulating
// silence, even mid-timer.
func (s *Segmenter) Feed(frame []float32) (samples []float32, start time.Time, ok bool) {
	now := s.now()

	if RMS(frame) >= s.threshold {
		if len(s.buf) == 0 {
			s.spanStart = now
		}
		s.buf = append(s.buf, frame)
		s.buffered += len(frame)
		s.silenceStart = time.Time{}
		return nil, time.Time{}, false
	}

	if s.silenceStart.IsZero() {
		s.silenceStart = now.Add(-s.frameDur)
	}
	if now.Sub(s.silenceStart) >= s.silenceDur && len(s.buf) > 0 {
		return s.finalize(), s.spanStart, true
	}
	return nil, time.Time{}, false
}

// BufferedFrames returns the number of speech frames currently accumulated.
func (s *Segmenter) BufferedFrames() int { return len(s.buf) }

// Reset discards any accumulated speech and clears the silence timer.
func (s *Segmenter) Reset() {
	s.buf = nil
	s.buffered = 0
	s.silenceStart = time.Time{}
}

// finalize concatenates the buffered frames into a single sample slice and
// resets the state machine to accumulating-silence.
func (s *Segmenter) finalize() []float32 {
	out := make([]float32, 0, s.buffered)
	for _, f := range s.buf {
		out = append(out, f...)
	}
	s.buf = nil
	s.buffered = 0
	s.silenceStart = time.Time{}
	return out
}

// RMS returns the root-mean-square amplitude of a frame of normalised
// float32 samples. Returns 0 for an empty frame.
func RMS(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
