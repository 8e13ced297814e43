package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/san-kum/firesim/internal/grid"
)

// Recording is a stream read in full after the producer has finished.
type Recording struct {
	Meta    grid.Metadata
	Frames  []grid.Frame
	Skipped int
}

// ReadFile decodes a finished stream file. Unlike a live tail, a final line
// without a trailing newline is accepted.
func ReadFile(path string, logger *slog.Logger) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec, err := Read(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func Read(r io.Reader, logger *slog.Logger) (*Recording, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dec := &decoder{logger: logger}
	br := bufio.NewReader(r)

	var rec Recording
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if msg, ok := dec.decode(line); ok {
				switch msg.Kind {
				case KindMetadata:
					rec.Meta = msg.Meta
				case KindFrame:
					rec.Frames = append(rec.Frames, msg.Frame)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if dec.meta == nil {
		return nil, ErrNoMetadata
	}
	rec.Skipped = dec.skipped
	return &rec, nil
}
