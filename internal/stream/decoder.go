package stream

import (
	"log/slog"

	"github.com/san-kum/firesim/internal/grid"
)

const maxLoggedLine = 120

// decoder turns complete stream lines into messages. The first line that
// parses as a header fixes the run shape; every later line is a frame.
type decoder struct {
	logger  *slog.Logger
	path    string
	meta    *grid.Metadata
	line    int
	seq     int
	skipped int
}

func (d *decoder) reset() {
	d.meta = nil
	d.line = 0
	d.seq = 0
}

func (d *decoder) decode(line []byte) (Message, bool) {
	d.line++
	if grid.IsBlank(line) {
		return Message{}, false
	}

	if d.meta == nil {
		meta, err := grid.ParseMetadata(line)
		if err != nil {
			d.logger.Warn("stream: line is not a metadata header, waiting for next line",
				"path", d.path, "line", d.line, "text", excerpt(line), "error", err)
			return Message{}, false
		}
		d.meta = &meta
		return Message{Kind: KindMetadata, Meta: meta}, true
	}

	frame, err := grid.ParseFrame(line, *d.meta)
	if err != nil {
		d.skipped++
		d.logger.Warn("stream: skipping malformed frame",
			"path", d.path, "line", d.line, "text", excerpt(line), "error", err)
		return Message{}, false
	}
	d.seq++
	return Message{Kind: KindFrame, Frame: frame, Seq: d.seq}, true
}

func excerpt(line []byte) string {
	if len(line) > maxLoggedLine {
		return string(line[:maxLoggedLine]) + "..."
	}
	return string(line)
}
