package ports

import (
	"context"
	"io"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live microphone capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions. Providers
// classify their own failures: start errors and the error returned by the
// session's Wait wrap the domain capture sentinels, so callers only add
// context.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// Capture is a single in-flight speech capture. Outcome resolves exactly
// once. Stop is idempotent and safe after the capture has finished; a capture
// stopped before resolving settles with Stopped set.
type Capture interface {
	Outcome() <-chan domain.CaptureOutcome
	Stop()
}

// SpeechRecognizer starts single-shot speech captures. Start must not block
// on device or network setup; setup failures resolve through the capture
// outcome. An immediate error means no capture was started at all.
type SpeechRecognizer interface {
	Start(ctx context.Context) (Capture, error)
}

// Playback is a single in-flight audio playback. Err is valid once Done is
// closed. Stop is idempotent.
type Playback interface {
	Done() <-chan struct{}
	Err() error
	Stop()
}

// AudioPlayer plays encoded audio clips.
type AudioPlayer interface {
	Play(ctx context.Context, clip domain.AudioClip) (Playback, error)
}

// GreetingSource fetches the clip played before a session's first capture.
type GreetingSource interface {
	Fetch(ctx context.Context) (domain.AudioClip, error)
}

// MeetingSink submits parsed intents for persistence and returns the stored
// meeting. It does not retry on the caller's behalf.
type MeetingSink interface {
	Submit(ctx context.Context, intent domain.MeetingIntent) (domain.Meeting, error)
}

// SpeechSynthesizer renders text to encoded speech audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (domain.AudioClip, error)
}

// EventSink receives session callbacks.
type EventSink interface {
	PhaseChanged(phase domain.Phase, reason domain.PhaseReason)
	Transcript(text string)
	SessionError(code domain.ErrorCode, message string)
}
