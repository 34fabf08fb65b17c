package domain

import "errors"

// Sentinel errors for capture and greeting failures. Adapters wrap these so
// callers can classify with errors.Is.
var (
	// ErrUnsupported marks an environment that cannot capture speech at all.
	// Terminal for a session; not retryable.
	ErrUnsupported = errors.New("speech capture is not supported in this environment")

	// ErrCaptureDenied marks a capture rejected or aborted by the user or
	// system. Retryable on the next gesture.
	ErrCaptureDenied = errors.New("speech capture was denied or aborted")

	// ErrNoSpeech marks a capture that completed without recognizing
	// anything. Retryable.
	ErrNoSpeech = errors.New("no speech detected")

	// ErrGreetingUnavailable marks a greeting clip that could not be fetched
	// or decoded. Never surfaced; sessions skip the greeting instead.
	ErrGreetingUnavailable = errors.New("greeting audio unavailable")
)

// ClassifyCapture maps a capture error to the code surfaced to callers.
// Unknown errors fall into the denied/aborted bucket.
func ClassifyCapture(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUnsupported):
		return ErrorCodeUnsupported
	case errors.Is(err, ErrNoSpeech):
		return ErrorCodeNoSpeech
	default:
		return ErrorCodeDenied
	}
}
