package experiment

import "errors"

var (
	ErrParams = errors.New("experiment: invalid run parameters")

	// ErrPrepare indicates the stream or control file could not be set up
	// before launch.
	ErrPrepare = errors.New("experiment: cannot prepare run files")

	// ErrLaunch indicates the simulation process could not be started.
	ErrLaunch = errors.New("experiment: cannot launch simulation")
)
