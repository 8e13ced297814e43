package session

import "errors"

var (
	// ErrNoFrames indicates a run whose stream ended before its first frame.
	ErrNoFrames = errors.New("session: run ended without frames")

	// ErrNoControl indicates a control request on a session without a
	// control file.
	ErrNoControl = errors.New("session: no control file configured")
)
