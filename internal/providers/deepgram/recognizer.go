package deepgram

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

const (
	defaultIdleTimeout    = 10 * time.Second
	defaultStreamingGrace = time.Second
	defaultChunkSize      = 4096
)

// RecognizerConfig tunes a single-utterance capture.
type RecognizerConfig struct {
	APIKey         string
	Audio          ports.AudioConfig
	ChunkSize      int
	StreamingGrace time.Duration
	IdleTimeout    time.Duration
}

// Recognizer records one utterance from the microphone, streams it to the
// transcription provider, and resolves with the final transcript. A capture
// ends when the provider marks an utterance complete or when no speech
// arrives within the idle timeout.
type Recognizer struct {
	audio    ports.AudioCapture
	provider ports.TranscriptionProvider
	cfg      RecognizerConfig
}

func NewRecognizer(audio ports.AudioCapture, provider ports.TranscriptionProvider, cfg RecognizerConfig) *Recognizer {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.StreamingGrace <= 0 {
		cfg.StreamingGrace = defaultStreamingGrace
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	return &Recognizer{audio: audio, provider: provider, cfg: cfg}
}

// Start begins a capture. The returned Capture resolves exactly once; Stop
// abandons it and settles the outcome with Stopped set.
func (r *Recognizer) Start(ctx context.Context) (ports.Capture, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return nil, fmt.Errorf("transcription API key is not configured: %w", domain.ErrUnsupported)
	}

	c := &capture{
		outcome: make(chan domain.CaptureOutcome, 1),
		stop:    make(chan struct{}),
	}
	go r.run(ctx, c)
	return c, nil
}

func (r *Recognizer) run(ctx context.Context, c *capture) {
	audioSession, err := r.audio.Start(ctx, r.cfg.Audio)
	if err != nil {
		c.deliver(domain.CaptureOutcome{Err: classifyAudioStart(err)})
		return
	}

	stream, err := r.provider.StartStreaming(ctx, ports.StreamingConfig{
		SampleRate:     r.cfg.Audio.SampleRate,
		Channels:       r.cfg.Audio.Channels,
		Encoding:       "linear16",
		InterimResults: true,
	})
	if err != nil {
		_ = audioSession.Stop()
		c.deliver(domain.CaptureOutcome{Err: fmt.Errorf("start transcription stream: %w", err)})
		return
	}

	pumpDone := make(chan struct{})
	go pumpAudio(audioSession, stream, r.cfg.ChunkSize, pumpDone)

	utt := &utterance{}
	idle := time.NewTimer(r.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case event, ok := <-stream.Events():
			if !ok {
				r.finalize(c, audioSession, stream, pumpDone, utt)
				return
			}
			if strings.TrimSpace(event.Text) != "" {
				utt.observe(event)
				resetTimer(idle, r.cfg.IdleTimeout)
			}
			if event.IsSpeechFinal {
				r.finalize(c, audioSession, stream, pumpDone, utt)
				return
			}
		case <-idle.C:
			r.finalize(c, audioSession, stream, pumpDone, utt)
			return
		case <-c.stop:
			r.teardown(audioSession, stream, pumpDone)
			c.deliver(domain.CaptureOutcome{Stopped: true})
			return
		case <-ctx.Done():
			r.teardown(audioSession, stream, pumpDone)
			c.deliver(domain.CaptureOutcome{Stopped: true})
			return
		}
	}
}

// finalize drains whatever the provider still has buffered, then settles the
// capture with a transcript, ErrNoSpeech, or the stream failure.
func (r *Recognizer) finalize(c *capture, audioSession ports.AudioSession, stream ports.StreamingSession, pumpDone chan struct{}, utt *utterance) {
	streamErr := r.teardown(audioSession, stream, pumpDone)
	for event := range stream.Events() {
		if strings.TrimSpace(event.Text) != "" {
			utt.observe(event)
		}
	}

	transcript := utt.text()
	if transcript != "" {
		c.deliver(domain.CaptureOutcome{Transcript: transcript})
		return
	}
	if streamErr != nil {
		c.deliver(domain.CaptureOutcome{Err: fmt.Errorf("transcription stream: %w", streamErr)})
		return
	}
	c.deliver(domain.CaptureOutcome{Err: domain.ErrNoSpeech})
}

// teardown stops the microphone, gives the stream a grace period to surface
// trailing results, and forces it closed before joining the pump. The pump is
// joined last: it may be parked in SendAudio, and only a closed stream is
// guaranteed to release it.
func (r *Recognizer) teardown(audioSession ports.AudioSession, stream ports.StreamingSession, pumpDone chan struct{}) error {
	_ = audioSession.Stop()
	err := waitForStream(stream, r.cfg.StreamingGrace)
	_ = stream.Close()
	<-pumpDone
	return err
}

func classifyAudioStart(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("audio recorder unavailable: %w: %w", domain.ErrUnsupported, err)
	}
	return fmt.Errorf("start audio capture: %w: %w", domain.ErrCaptureDenied, err)
}

// pumpAudio copies microphone chunks into the stream until the recorder
// stops, then half-closes the stream so the provider can flush final results.
func pumpAudio(audioSession ports.AudioSession, stream ports.StreamingSession, chunkSize int, done chan struct{}) {
	defer close(done)

	buf := make([]byte, chunkSize)
	for {
		n, err := audioSession.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if sendErr := stream.SendAudio(chunk); sendErr != nil {
				return
			}
		}
		if err != nil {
			_ = stream.CloseSend()
			return
		}
	}
}

// waitForStream waits for the session to finish, closing it if the grace
// period elapses first.
func waitForStream(stream ports.StreamingSession, grace time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- stream.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		_ = stream.Close()
		return <-done
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// capture is a single in-flight recognizer run.
type capture struct {
	outcome  chan domain.CaptureOutcome
	stop     chan struct{}
	stopOnce sync.Once
}

func (c *capture) Outcome() <-chan domain.CaptureOutcome { return c.outcome }

func (c *capture) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *capture) deliver(outcome domain.CaptureOutcome) {
	c.outcome <- outcome
}
