package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tarjama-live/tarjama/pkg/types"
)

// ValidASRProviders lists known ASR provider names. Used by [Validate].
var ValidASRProviders = []string{"whisper", "whisper-native"}

// Load reads the YAML configuration file at path, applies it over [Default],
// and returns a validated [Config]. It is a convenience wrapper around
// [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and validates
// the result. Useful in tests where configs are constructed from string
// literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.ChunkDuration <= 0 {
		errs = append(errs, errors.New("audio.chunk_duration must be positive"))
	}

	if cfg.Segmenter.SilenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("segmenter.silence_threshold %.4f must not be negative", cfg.Segmenter.SilenceThreshold))
	}
	if cfg.Segmenter.SilenceDuration <= 0 {
		errs = append(errs, errors.New("segmenter.silence_duration must be positive"))
	}

	if cfg.Pipeline.FrameQueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.frame_queue_capacity %d must be positive", cfg.Pipeline.FrameQueueCapacity))
	}
	if cfg.Pipeline.SegmentQueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.segment_queue_capacity %d must be positive", cfg.Pipeline.SegmentQueueCapacity))
	}
	if cfg.Pipeline.PollInterval <= 0 {
		errs = append(errs, errors.New("pipeline.poll_interval must be positive"))
	}

	switch cfg.ASR.Provider {
	case "whisper":
		if cfg.ASR.ServerURL == "" {
			errs = append(errs, errors.New("asr.server_url is required when asr.provider is whisper"))
		}
	case "whisper-native":
		if cfg.ASR.ModelPath == "" {
			errs = append(errs, errors.New("asr.model_path is required when asr.provider is whisper-native"))
		}
	default:
		errs = append(errs, fmt.Errorf("asr.provider %q is invalid; valid values: %v", cfg.ASR.Provider, ValidASRProviders))
	}

	if _, err := types.ParseMode(cfg.InitialMode); err != nil {
		errs = append(errs, fmt.Errorf("initial_mode: %w", err))
	}

	return errors.Join(errs...)
}
