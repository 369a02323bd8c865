package voice

import "errors"

var (
	// ErrPermissionDenied indicates the microphone could not be opened
	// because the user or OS denied access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrStreamingSession indicates a controller that has already been
	// started. Controllers are single-use; build a new one to reconnect.
	ErrStreamingSession = errors.New("voice session already started")
)
