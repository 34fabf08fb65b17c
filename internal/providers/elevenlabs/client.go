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

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// ErrNotConfigured is returned when no API key is set. Callers treat
// synthesis as optional and degrade to text-only behavior.
var ErrNotConfigured = errors.New("elevenlabs API key is not configured")

type Config struct {
	APIKey     string
	APIBaseURL string
	VoiceID    string
	Model      string
}

// Client renders text to speech through the ElevenLabs HTTP API.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.elevenlabs.io"
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = "pNInz6obpgDQGcFmaJgB"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the client has an API key to call with.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *Client) Synthesize(ctx context.Context, text string) (domain.AudioClip, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AudioClip{}, errors.New("synthesis text is empty")
	}
	if !c.Configured() {
		return domain.AudioClip{}, ErrNotConfigured
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.cfg.Model})
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("encode synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s",
		strings.TrimRight(c.cfg.APIBaseURL, "/"), url.PathEscape(c.cfg.VoiceID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("call elevenlabs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.AudioClip{}, fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("read synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return domain.AudioClip{}, errors.New("elevenlabs returned no audio")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	return domain.AudioClip{Data: audio, MIME: mime}, nil
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}
