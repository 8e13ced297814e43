package grid

import "errors"

var (
	// ErrBlankLine is returned for lines that carry no JSON value.
	ErrBlankLine = errors.New("grid: blank line")

	// ErrMetadata indicates a line that is not a valid run header.
	ErrMetadata = errors.New("grid: invalid metadata header")

	// ErrFrame indicates a line that does not decode as a cell grid.
	ErrFrame = errors.New("grid: invalid frame")

	// ErrShape indicates a frame whose dimensions disagree with the header.
	ErrShape = errors.New("grid: frame shape does not match metadata")
)
