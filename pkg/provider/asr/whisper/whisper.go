// Package whisper provides whisper.cpp-backed implementations of asr.Engine.
//
// Two backends are available:
//
//   - [Client] talks to a running whisper-server binary over its REST API
//     (POST /inference, multipart WAV upload). It needs no CGO and is the
//     default backend.
//   - [NewNative] loads a ggml model in-process through the whisper.cpp Go
//     bindings. It requires the whisper_cpp build tag plus libwhisper.a and
//     whisper.h at link time; without the tag the constructor returns an
//     engine whose Load fails, which the pipeline degrades around.
//
// Usage:
//
//	eng, err := whisper.New("http://localhost:8080",
//	    whisper.WithModel("small"),
//	)
//	err = eng.Load(ctx)
//	text, err := eng.Transcribe(ctx, samples, "en")
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tarjama-live/tarjama/pkg/provider/asr"
)

const (
	defaultSampleRate = 16000
	defaultTimeout    = 30 * time.Second
)

// Compile-time assertion that Client implements asr.Engine.
var _ asr.Engine = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithModel sets the model identifier forwarded to the whisper-server
// (e.g., "base.en", "small"). When empty the server uses whichever model it
// was started with — this is the default.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithSampleRate sets the sample rate in Hz declared in the WAV header. This
// must match the actual rate of the samples passed to Transcribe. Defaults
// to 16000.
func WithSampleRate(rate int) Option {
	return func(c *Client) { c.sampleRate = rate }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s, which is
// generous for CPU inference over utterance-sized audio.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// Client implements asr.Engine backed by a whisper.cpp HTTP server.
// It is safe for concurrent use; the server serialises inference internally.
type Client struct {
	serverURL  string
	model      string
	sampleRate int
	httpClient *http.Client
}

// New creates a Client that connects to the whisper-server at serverURL
// (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	c := &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		sampleRate: defaultSampleRate,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Load verifies the server is reachable. Any HTTP response counts as
// reachable — older whisper-server builds have no health endpoint, so a 404
// still proves something is listening. Only a transport-level failure is a
// load error.
func (c *Client) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("whisper: create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper: server %s unreachable: %w", c.serverURL, err)
	}
	resp.Body.Close()
	return nil
}

// Transcribe encodes samples as a WAV file and POSTs it to the /inference
// endpoint as multipart/form-data, returning the transcribed text.
func (c *Client) Transcribe(ctx context.Context, samples []float32, language string) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	wav := EncodeWAV(FloatToPCM16(samples), c.sampleRate, 1)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return "", fmt.Errorf("whisper: write wav data: %w", err)
	}

	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if c.model != "" {
		if err := mw.WriteField("model", c.model); err != nil {
			return "", fmt.Errorf("whisper: write model field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}

// Ping reports whether the server is still reachable. It runs the same
// check as Load and is cheap enough for a readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.Load(ctx)
}

// Close is a no-op for the HTTP backend.
func (c *Client) Close() error { return nil }
