// Package libre provides a Translator backed by a LibreTranslate-compatible
// HTTP server (LibreTranslate itself, or an Argos Translate instance behind
// the same API).
//
// Usage:
//
//	tr := libre.New("http://localhost:5000", libre.WithTimeout(8*time.Second))
//	out, err := tr.Translate(ctx, "peace be upon you", types.ModeENToAR)
package libre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tarjama-live/tarjama/pkg/provider/translate"
	"github.com/tarjama-live/tarjama/pkg/types"
)

const defaultTimeout = 8 * time.Second

// Compile-time assertion that Client implements translate.Translator.
var _ translate.Translator = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout. Defaults to 8s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithAPIKey sets the api_key field sent with every request, for hosted
// LibreTranslate instances that require one.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// Client implements translate.Translator against the LibreTranslate
// /translate endpoint. Safe for concurrent use.
type Client struct {
	base       string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the server at base (e.g., "http://localhost:5000").
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Translate posts the LibreTranslate payload {q, source, target, format} and
// returns the translated text. Empty input short-circuits to "" with no
// network call.
func (c *Client) Translate(ctx context.Context, text string, mode types.Mode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	payload := map[string]any{
		"q":      text,
		"source": mode.SourceLanguage(),
		"target": mode.TargetLanguage(),
		"format": "text",
	}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("libre: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("libre: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libre: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("libre: server returned HTTP %d for %s", resp.StatusCode, mode)
	}

	var lr struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("libre: decode response: %w", err)
	}
	return strings.TrimSpace(lr.TranslatedText), nil
}
