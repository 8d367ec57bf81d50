// Package elevenlabs is a minimal text-to-speech client for the ElevenLabs
// HTTP API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 4 << 10

// Client calls POST {base}/v1/text-to-speech/{voice}.
type Client struct {
	baseURL string
	apiKey  string
	voiceID string
	modelID string
	http    *http.Client
}

// Config holds the connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	VoiceID string
	ModelID string
	Timeout time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("elevenlabs: api key is required")
	}
	if cfg.VoiceID == "" {
		return nil, errors.New("elevenlabs: voice id is required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.elevenlabs.io"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		modelID: cfg.ModelID,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type speakRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// Speak returns the synthesized audio bytes for text in the configured voice.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(speakRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal: %w", err)
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + url.PathEscape(c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("elevenlabs: %s: %s", resp.Status, redactSecrets(strings.TrimSpace(string(b)), c.apiKey))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs: empty audio")
	}
	return audio, nil
}

func redactSecrets(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, apiKey, "[REDACTED]")
}
