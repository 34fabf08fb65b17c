package voice

import "github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"

// ErrorMessage maps a capture error code to the short message shown beside
// the interaction control. Each code surfaces distinctly.
func ErrorMessage(code domain.ErrorCode) string {
	switch code {
	case domain.ErrorCodeUnsupported:
		return "Voice capture isn't supported on this device"
	case domain.ErrorCodeDenied:
		return "Microphone access was denied or the capture was interrupted"
	case domain.ErrorCodeNoSpeech:
		return "No speech detected. Try again"
	default:
		return "Voice capture failed"
	}
}

// PhaseMessage maps a transition to a status line for display.
func PhaseMessage(phase domain.Phase, reason domain.PhaseReason) string {
	switch reason {
	case domain.PhaseReasonGreetingStarted:
		return "Playing greeting..."
	case domain.PhaseReasonGreetingFinished:
		return "Listening..."
	case domain.PhaseReasonGreetingSkipped:
		return "Listening..."
	case domain.PhaseReasonGreetingInterrupted:
		return "Greeting skipped. Listening..."
	case domain.PhaseReasonCaptureStarted, domain.PhaseReasonRetry:
		return "Listening..."
	case domain.PhaseReasonCaptureStopped:
		return "Capture stopped"
	case domain.PhaseReasonTranscriptCaptured:
		return "Transcript captured"
	case domain.PhaseReasonCaptureFailed:
		return "Voice capture failed"
	default:
		if phase == domain.PhaseIdle {
			return "Ready"
		}
		return ""
	}
}
