package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/sim"
)

var ErrBatch = errors.New("store: invalid batch file")

// GridData is a whole run in one JSON document.
type GridData struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Steps  [][][]string `json:"steps"`
}

func fromSimulation(s *sim.Simulation) GridData {
	data := GridData{
		Width:  s.Width(),
		Height: s.Height(),
		Steps:  make([][][]string, 0, s.Len()),
	}
	for _, f := range s.Frames() {
		data.Steps = append(data.Steps, f.Rows())
	}
	return data
}

func ExportJSON(path string, s *sim.Simulation) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, s); err != nil {
		return err
	}
	return file.Close()
}

func WriteJSON(w io.Writer, s *sim.Simulation) error {
	encoder := json.NewEncoder(w)
	return encoder.Encode(fromSimulation(s))
}

func ImportJSON(path string) (grid.Metadata, []grid.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return grid.Metadata{}, nil, err
	}
	defer file.Close()

	meta, frames, err := ReadJSON(file)
	if err != nil {
		return grid.Metadata{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, frames, nil
}

// ReadJSON decodes a batch document. Every step must match the declared
// shape.
func ReadJSON(r io.Reader) (grid.Metadata, []grid.Frame, error) {
	var data GridData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return grid.Metadata{}, nil, fmt.Errorf("%w: %v", ErrBatch, err)
	}
	meta := grid.Metadata{Width: data.Width, Height: data.Height}
	if meta.Width <= 0 || meta.Height <= 0 {
		return grid.Metadata{}, nil, fmt.Errorf("%w: shape %dx%d", ErrBatch, meta.Width, meta.Height)
	}

	frames := make([]grid.Frame, 0, len(data.Steps))
	for i, step := range data.Steps {
		f := grid.NewFrame(step)
		if !f.Fits(meta) {
			return grid.Metadata{}, nil, fmt.Errorf("%w: step %d is %dx%d, want %dx%d",
				ErrBatch, i, f.Width(), f.Height(), meta.Width, meta.Height)
		}
		frames = append(frames, f)
	}
	return meta, frames, nil
}
