package stream

import "errors"

var (
	// ErrWatch indicates the filesystem watch could not be established. A
	// run cannot start without it.
	ErrWatch = errors.New("stream: cannot watch stream file")

	// ErrNoMetadata indicates a stream that ended before any header line.
	ErrNoMetadata = errors.New("stream: no metadata header found")
)
