// Package client calls the scheduling API on behalf of a voice session. It
// backs both the greeting source and the meeting sink ports.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:5000"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

type greetingResponse struct {
	Success   bool   `json:"success"`
	AudioData string `json:"audioData"`
}

// Fetch retrieves the synthesized greeting clip. Every failure wraps
// ErrGreetingUnavailable so sessions can skip the greeting and move on.
func (c *Client) Fetch(ctx context.Context) (domain.AudioClip, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/voice/greeting", nil)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("%w: %v", domain.ErrGreetingUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("%w: %v", domain.ErrGreetingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AudioClip{}, fmt.Errorf("%w: status %d", domain.ErrGreetingUnavailable, resp.StatusCode)
	}

	var payload greetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.AudioClip{}, fmt.Errorf("%w: decode response: %v", domain.ErrGreetingUnavailable, err)
	}
	if !payload.Success || payload.AudioData == "" {
		return domain.AudioClip{}, fmt.Errorf("%w: no greeting audio in response", domain.ErrGreetingUnavailable)
	}

	audio, err := base64.StdEncoding.DecodeString(payload.AudioData)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("%w: decode audio: %v", domain.ErrGreetingUnavailable, err)
	}
	return domain.AudioClip{Data: audio, MIME: "audio/mpeg"}, nil
}

type meetingRequest struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	Duration    int    `json:"duration"`
	Description string `json:"description,omitempty"`
}

type meetingResponse struct {
	Meeting domain.Meeting `json:"meeting"`
}

type apiError struct {
	Message string `json:"message"`
}

// Submit creates a meeting from a parsed intent and returns the stored
// record.
func (c *Client) Submit(ctx context.Context, intent domain.MeetingIntent) (domain.Meeting, error) {
	if intent.StartTime == nil {
		return domain.Meeting{}, errors.New("meeting intent has no start time")
	}

	body, err := json.Marshal(meetingRequest{
		Title:       intent.Title,
		StartTime:   intent.StartTime.Format(time.RFC3339),
		Duration:    intent.DurationMinutes,
		Description: intent.Notes,
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("encode meeting request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/meetings", bytes.NewReader(body))
	if err != nil {
		return domain.Meeting{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("create meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return domain.Meeting{}, fmt.Errorf("create meeting: %s", apiErrorMessage(resp))
	}

	var payload meetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Meeting{}, fmt.Errorf("decode meeting response: %w", err)
	}
	return payload.Meeting, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func apiErrorMessage(resp *http.Response) string {
	var payload apiError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Message)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
