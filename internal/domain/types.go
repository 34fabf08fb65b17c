package domain

import (
	"strings"
	"time"
)

// Phase models the voice scheduling lifecycle.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhasePlayingGreeting Phase = "playing_greeting"
	PhaseListening       Phase = "listening"
	PhaseError           Phase = "error"
)

// PhaseReason provides a structured reason for phase transitions.
type PhaseReason string

const (
	PhaseReasonGreetingStarted     PhaseReason = "greeting_started"
	PhaseReasonGreetingFinished    PhaseReason = "greeting_finished"
	PhaseReasonGreetingSkipped     PhaseReason = "greeting_skipped"
	PhaseReasonGreetingInterrupted PhaseReason = "greeting_interrupted"
	PhaseReasonCaptureStarted      PhaseReason = "capture_started"
	PhaseReasonCaptureStopped      PhaseReason = "capture_stopped"
	PhaseReasonTranscriptCaptured  PhaseReason = "transcript_captured"
	PhaseReasonCaptureFailed       PhaseReason = "capture_failed"
	PhaseReasonRetry               PhaseReason = "retry"
)

// ErrorCode identifies capture failures surfaced to the caller.
type ErrorCode string

const (
	ErrorCodeUnsupported ErrorCode = "unsupported"
	ErrorCodeDenied      ErrorCode = "denied"
	ErrorCodeNoSpeech    ErrorCode = "no_speech"
)

// Confidence records how directly an intent's start time was recognized.
type Confidence string

const (
	ConfidenceExplicit Confidence = "explicit"
	ConfidenceInferred Confidence = "inferred"
	ConfidenceFallback Confidence = "fallback"
)

// MeetingIntent is the structured scheduling request derived from a transcript.
// StartTime is nil exactly when Confidence is ConfidenceFallback.
type MeetingIntent struct {
	Title           string     `json:"title"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Confidence      Confidence `json:"confidence"`
	Notes           string     `json:"notes,omitempty"`
}

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// CaptureOutcome resolves a single speech capture. Exactly one of Transcript,
// Stopped, or Err is meaningful.
type CaptureOutcome struct {
	Transcript string
	Stopped    bool
	Err        error
}

// AudioClip holds encoded audio returned by a greeting source.
type AudioClip struct {
	Data []byte
	MIME string
}

// Status summarizes a session for display.
type Status struct {
	Phase          Phase  `json:"phase"`
	HasGreeted     bool   `json:"hasGreeted"`
	LastTranscript string `json:"lastTranscript,omitempty"`
	LastError      string `json:"lastError,omitempty"`
}

// CalendarPreference selects where scheduled meetings surface.
type CalendarPreference string

const (
	CalendarPreferenceLocal  CalendarPreference = "local"
	CalendarPreferenceDevice CalendarPreference = "device"
)

// NormalizeCalendarPreference maps free-form input to a valid preference,
// defaulting to local.
func NormalizeCalendarPreference(value string) CalendarPreference {
	switch preference := CalendarPreference(strings.ToLower(strings.TrimSpace(value))); preference {
	case CalendarPreferenceLocal, CalendarPreferenceDevice:
		return preference
	default:
		return CalendarPreferenceLocal
	}
}

// User is a registered account.
type User struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"`
	CalendarPreference CalendarPreference `json:"calendar_preference"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Meeting is a persisted meeting record.
type Meeting struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndTime is the meeting start plus its duration.
func (m Meeting) EndTime() time.Time {
	return m.StartTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
}
