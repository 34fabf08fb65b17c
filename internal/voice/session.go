// Package voice implements the interaction state machine that turns single
// user gestures into greeting playback, speech capture, and exactly-once
// transcript or error delivery.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

var ErrSessionClosed = errors.New("voice session is closed")

// Session mediates one interaction control against greeting playback and
// speech capture. Each gesture maps to exactly one of: start playback, pivot
// playback into capture, stop capture, or start capture directly. At most one
// playback and one capture are active at any time.
type Session struct {
	recognizer ports.SpeechRecognizer
	player     ports.AudioPlayer
	greeting   ports.GreetingSource
	events     ports.EventSink

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	phase          domain.Phase
	hasGreeted     bool
	lastTranscript string
	lastErr        error
	unsupported    bool
	closed         bool
	gen            uint64
	playback       ports.Playback
	capture        ports.Capture
}

// NewSession wires a session around its collaborators. The session owns its
// lifetime; Close aborts all in-flight work.
func NewSession(
	recognizer ports.SpeechRecognizer,
	player ports.AudioPlayer,
	greeting ports.GreetingSource,
	events ports.EventSink,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		recognizer: recognizer,
		player:     player,
		greeting:   greeting,
		events:     events,
		ctx:        ctx,
		cancel:     cancel,
		phase:      domain.PhaseIdle,
	}
}

// Interact handles one user gesture against the current phase. The first
// gesture of a session plays the greeting; a gesture during the greeting
// stops it and starts listening in the same motion; a gesture while
// listening stops the capture without emitting anything. After an
// unsupported-capture failure the session refuses further gestures.
func (s *Session) Interact() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.unsupported {
		s.mu.Unlock()
		return domain.ErrUnsupported
	}

	switch s.phase {
	case domain.PhasePlayingGreeting:
		s.gen++
		gen := s.gen
		playback := s.playback
		s.playback = nil
		s.mu.Unlock()

		if playback != nil {
			playback.Stop()
		}
		s.startCapture(gen, domain.PhaseReasonGreetingInterrupted)
		return nil

	case domain.PhaseListening:
		s.gen++
		capture := s.capture
		s.capture = nil
		s.phase = domain.PhaseIdle
		s.mu.Unlock()

		if capture != nil {
			capture.Stop()
		}
		s.events.PhaseChanged(domain.PhaseIdle, domain.PhaseReasonCaptureStopped)
		return nil

	default:
		reason := domain.PhaseReasonCaptureStarted
		if s.phase == domain.PhaseError {
			reason = domain.PhaseReasonRetry
		}
		s.lastErr = nil
		s.gen++
		gen := s.gen

		if !s.hasGreeted {
			s.hasGreeted = true
			s.phase = domain.PhasePlayingGreeting
			s.mu.Unlock()

			s.events.PhaseChanged(domain.PhasePlayingGreeting, domain.PhaseReasonGreetingStarted)
			go s.runGreeting(gen)
			return nil
		}
		s.mu.Unlock()

		s.startCapture(gen, reason)
		return nil
	}
}

// Close tears down the session. In-flight playback and capture are stopped
// and any callback they would still deliver is suppressed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	playback := s.playback
	capture := s.capture
	s.playback = nil
	s.capture = nil
	s.mu.Unlock()

	s.cancel()
	if playback != nil {
		playback.Stop()
	}
	if capture != nil {
		capture.Stop()
	}
}

// Status reports the current phase for display.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.Status{
		Phase:          s.phase,
		HasGreeted:     s.hasGreeted,
		LastTranscript: s.lastTranscript,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// runGreeting fetches and plays the greeting clip, then pivots into capture.
// Fetch and playback failures skip straight to capture; the greeting is an
// enhancement and never surfaces as an error.
func (s *Session) runGreeting(gen uint64) {
	clip, err := s.greeting.Fetch(s.ctx)
	if err != nil || len(clip.Data) == 0 {
		s.pivotToCapture(gen, domain.PhaseReasonGreetingSkipped)
		return
	}

	// A gesture or Close that landed during the fetch makes this clip stale;
	// it must never reach the player.
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	playback, err := s.player.Play(s.ctx, clip)
	if err != nil {
		s.pivotToCapture(gen, domain.PhaseReasonGreetingSkipped)
		return
	}

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		playback.Stop()
		return
	}
	s.playback = playback
	s.mu.Unlock()

	select {
	case <-playback.Done():
		reason := domain.PhaseReasonGreetingFinished
		if playback.Err() != nil {
			reason = domain.PhaseReasonGreetingSkipped
		}
		s.pivotToCapture(gen, reason)
	case <-s.ctx.Done():
		playback.Stop()
	}
}

func (s *Session) pivotToCapture(gen uint64, reason domain.PhaseReason) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.phase != domain.PhasePlayingGreeting {
		s.mu.Unlock()
		return
	}
	s.playback = nil
	s.mu.Unlock()

	s.startCapture(gen, reason)
}

// startCapture moves to Listening before asking the recognizer for a capture,
// so a concurrent gesture lands on the stop path instead of starting a second
// capture. A capture resolved after its generation passed is stopped and
// discarded without being registered.
func (s *Session) startCapture(gen uint64, reason domain.PhaseReason) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseListening
	s.mu.Unlock()

	s.events.PhaseChanged(domain.PhaseListening, reason)

	capture, err := s.recognizer.Start(s.ctx)
	if err != nil {
		s.deliverCaptureError(gen, err)
		return
	}

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		capture.Stop()
		return
	}
	s.capture = capture
	s.mu.Unlock()

	go s.awaitCapture(capture, gen)
}

func (s *Session) awaitCapture(capture ports.Capture, gen uint64) {
	var outcome domain.CaptureOutcome
	select {
	case outcome = <-capture.Outcome():
	case <-s.ctx.Done():
		capture.Stop()
		return
	}

	s.mu.Lock()
	if s.closed || gen != s.gen || s.capture != capture {
		s.mu.Unlock()
		return
	}
	s.capture = nil

	switch {
	case outcome.Stopped:
		s.phase = domain.PhaseIdle
		s.mu.Unlock()
		s.events.PhaseChanged(domain.PhaseIdle, domain.PhaseReasonCaptureStopped)

	case outcome.Err != nil:
		s.mu.Unlock()
		s.deliverCaptureError(gen, outcome.Err)

	default:
		text := strings.TrimSpace(outcome.Transcript)
		if text == "" {
			s.mu.Unlock()
			s.deliverCaptureError(gen, domain.ErrNoSpeech)
			return
		}
		s.lastTranscript = text
		s.phase = domain.PhaseIdle
		s.mu.Unlock()

		s.events.Transcript(text)
		s.events.PhaseChanged(domain.PhaseIdle, domain.PhaseReasonTranscriptCaptured)
	}
}

func (s *Session) deliverCaptureError(gen uint64, err error) {
	code := domain.ClassifyCapture(err)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.lastErr = err
	s.phase = domain.PhaseError
	if code == domain.ErrorCodeUnsupported {
		s.unsupported = true
	}
	s.mu.Unlock()

	s.events.SessionError(code, ErrorMessage(code))
	s.events.PhaseChanged(domain.PhaseError, domain.PhaseReasonCaptureFailed)
}
