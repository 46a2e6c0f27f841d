// Package config provides the configuration schema and loader for the
// tarjama translation server.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tarjama-live/tarjama/pkg/types"
)

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps time.Duration so YAML values like "800ms" or "5s" decode
// directly.
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for tarjama.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Audio      AudioConfig      `yaml:"audio"`
	Segmenter  SegmenterConfig  `yaml:"segmenter"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	ASR        ASRConfig        `yaml:"asr"`
	Translate  TranslateConfig  `yaml:"translate"`
	Transcript TranscriptConfig `yaml:"transcript"`

	// InitialMode is the translation direction on startup.
	InitialMode string `yaml:"initial_mode"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the caption/metrics server listens on
	// (e.g., ":8080"). Empty disables the HTTP surface.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AudioConfig holds microphone capture settings.
type AudioConfig struct {
	// SampleRate is the capture rate in Hz. Whisper models expect 16000.
	SampleRate int `yaml:"sample_rate"`

	// ChunkDuration is the length of each capture block.
	ChunkDuration Duration `yaml:"chunk_duration"`
}

// SegmenterConfig holds utterance boundary detection settings.
type SegmenterConfig struct {
	// SilenceThreshold is the RMS level below which a block counts as silent.
	SilenceThreshold float64 `yaml:"silence_threshold"`

	// SilenceDuration is how long silence must persist to end an utterance.
	SilenceDuration Duration `yaml:"silence_duration"`
}

// PipelineConfig holds queue and scheduling settings.
type PipelineConfig struct {
	// FrameQueueCapacity bounds the raw audio block queue between the
	// device callback and the segmenter. Oldest blocks are dropped on
	// overflow.
	FrameQueueCapacity int `yaml:"frame_queue_capacity"`

	// SegmentQueueCapacity bounds the finished-utterance queue feeding the
	// inference worker. New utterances are dropped on overflow.
	SegmentQueueCapacity int `yaml:"segment_queue_capacity"`

	// PollInterval is how often blocking consumers re-check for work and
	// shutdown.
	PollInterval Duration `yaml:"poll_interval"`
}

// ASRConfig selects and configures the speech recognition engine.
type ASRConfig struct {
	// Provider selects the engine: "whisper" (HTTP whisper-server) or
	// "whisper-native" (in-process whisper.cpp, requires the whisper_cpp
	// build tag).
	Provider string `yaml:"provider"`

	// ServerURL is the whisper-server base URL for the "whisper" provider.
	ServerURL string `yaml:"server_url"`

	// Model names the model for server-side selection.
	Model string `yaml:"model"`

	// ModelPath is the GGML model file for the "whisper-native" provider.
	ModelPath string `yaml:"model_path"`

	// Timeout bounds each transcription request.
	Timeout Duration `yaml:"timeout"`
}

// TranslateConfig configures the translation backend.
type TranslateConfig struct {
	// BaseURL is the LibreTranslate endpoint. Empty selects the
	// passthrough translator (captions show the transcript untranslated).
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against hosted LibreTranslate instances.
	APIKey string `yaml:"api_key"`

	// FallbackPassthrough shows the untranslated transcript as the caption
	// when the translation backend is down, instead of dropping the caption.
	FallbackPassthrough bool `yaml:"fallback_passthrough"`

	// Timeout bounds each translation request.
	Timeout Duration `yaml:"timeout"`
}

// TranscriptConfig configures the session transcript file.
type TranscriptConfig struct {
	// Dir is where per-session transcript files are written. Empty
	// disables transcript logging.
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   LogInfo,
		},
		Audio: AudioConfig{
			SampleRate:    16000,
			ChunkDuration: Duration(500 * time.Millisecond),
		},
		Segmenter: SegmenterConfig{
			SilenceThreshold: 0.01,
			SilenceDuration:  Duration(800 * time.Millisecond),
		},
		Pipeline: PipelineConfig{
			FrameQueueCapacity:   10,
			SegmentQueueCapacity: 5,
			PollInterval:         Duration(100 * time.Millisecond),
		},
		ASR: ASRConfig{
			Provider:  "whisper",
			ServerURL: "http://127.0.0.1:8178",
			Timeout:   Duration(60 * time.Second),
		},
		Translate: TranslateConfig{
			Timeout: Duration(30 * time.Second),
		},
		Transcript: TranscriptConfig{
			Dir: ".",
		},
		InitialMode: string(types.ModeENToAR),
	}
}
