package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IsBlank reports whether line holds nothing but whitespace.
func IsBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

type rawMetadata struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

// ParseMetadata decodes a run header line such as {"width":20,"height":10}.
func ParseMetadata(line []byte) (Metadata, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Metadata{}, ErrBlankLine
	}
	if line[0] != '{' {
		return Metadata{}, fmt.Errorf("%w: not an object", ErrMetadata)
	}

	var raw rawMetadata
	if err := json.Unmarshal(line, &raw); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if raw.Width == nil || raw.Height == nil {
		return Metadata{}, fmt.Errorf("%w: width and height are required", ErrMetadata)
	}
	if *raw.Width <= 0 || *raw.Height <= 0 {
		return Metadata{}, fmt.Errorf("%w: non-positive shape %dx%d", ErrMetadata, *raw.Width, *raw.Height)
	}
	return Metadata{Width: *raw.Width, Height: *raw.Height}, nil
}

// ParseFrame decodes one frame line and checks it against the run shape.
// Both a bare grid ([["T","G"],...]) and the wrapped form {"cells": grid}
// are accepted.
func ParseFrame(line []byte, meta Metadata) (Frame, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Frame{}, ErrBlankLine
	}

	var rows [][]string
	switch line[0] {
	case '[':
		if err := json.Unmarshal(line, &rows); err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrFrame, err)
		}
	case '{':
		var wrapped struct {
			Cells [][]string `json:"cells"`
		}
		if err := json.Unmarshal(line, &wrapped); err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrFrame, err)
		}
		if wrapped.Cells == nil {
			return Frame{}, fmt.Errorf("%w: object without cells", ErrFrame)
		}
		rows = wrapped.Cells
	default:
		return Frame{}, fmt.Errorf("%w: unexpected %q", ErrFrame, line[0])
	}

	f := NewFrame(rows)
	if !f.Fits(meta) {
		return Frame{}, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrShape, f.Width(), f.Height(), meta.Width, meta.Height)
	}
	return f, nil
}
