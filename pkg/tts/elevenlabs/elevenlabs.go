// Package elevenlabs provides a tts.Synthesizer backed by the ElevenLabs
// REST API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Yash3561/Nexus/pkg/tts"
	"github.com/Yash3561/Nexus/pkg/utils"
)

const (
	// DefaultBaseURL is the ElevenLabs API root.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultVoiceID is the "Adam" voice.
	DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"

	// DefaultModelID is the lowest latency synthesis model.
	DefaultModelID = "eleven_turbo_v2_5"

	outputFormat   = "mp3_44100_128"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the ElevenLabs client.
type Config struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

// Client implements tts.Synthesizer.
type Client struct {
	apiKey     string
	voiceID    string
	modelID    string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID  string `json:"voice_id"`
		Name     string `json:"name"`
		Category string `json:"category"`
	} `json:"voices"`
}

// NewClient creates an ElevenLabs client. A missing API key is reported by
// each call as tts.ErrNotConfigured.
func NewClient(c Config, logger *slog.Logger) *Client {
	if c.VoiceID == "" {
		c.VoiceID = DefaultVoiceID
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:  c.APIKey,
		voiceID: c.VoiceID,
		modelID: c.ModelID,
		baseURL: c.BaseURL,
		httpClient: &http.Client{
			Timeout: c.Timeout,
		},
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// TextToSpeech synthesizes text with the configured voice and returns MP3
// bytes.
func (c *Client) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		c.logger.Debug("tts disabled, skipping synthesis", "text", utils.Truncate(text, 50))
		return nil, tts.ErrNotConfigured
	}

	jsonBody, err := json.Marshal(speechRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("marshaling speech request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL, url.PathEscape(c.voiceID), outputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech synthesis failed: status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	c.logger.Debug("speech synthesized", "bytes", len(audio))
	return audio, nil
}

// Voices lists the voices available to the account.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	if c.apiKey == "" {
		return nil, tts.ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("creating voices request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending voices request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("listing voices failed: status %d: %s", resp.StatusCode, string(body))
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decoding voices response: %w", err)
	}

	voices := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		voices = append(voices, tts.Voice{ID: v.VoiceID, Name: v.Name, Category: v.Category})
	}
	return voices, nil
}
