package grid

// Metadata is the header line of a run's stream. It fixes the shape of every
// frame that follows.
type Metadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Cells returns the number of cells in a frame of this shape.
func (m Metadata) Cells() int { return m.Width * m.Height }

// Frame is one time step's cell grid. A Frame is never mutated after it has
// been parsed; callers must treat the slices returned by Rows and Row as
// read-only.
type Frame struct {
	rows [][]string
}

// NewFrame wraps rows as a Frame without validating shape.
func NewFrame(rows [][]string) Frame {
	return Frame{rows: rows}
}

func (f Frame) Width() int {
	if len(f.rows) == 0 {
		return 0
	}
	return len(f.rows[0])
}

func (f Frame) Height() int { return len(f.rows) }

// Cell returns the code at column x, row y, or "" when out of range.
func (f Frame) Cell(x, y int) string {
	if y < 0 || y >= len(f.rows) || x < 0 || x >= len(f.rows[y]) {
		return ""
	}
	return f.rows[y][x]
}

func (f Frame) Row(y int) []string {
	if y < 0 || y >= len(f.rows) {
		return nil
	}
	return f.rows[y]
}

func (f Frame) Rows() [][]string { return f.rows }

// Fits reports whether the frame matches the declared run shape.
func (f Frame) Fits(m Metadata) bool {
	if len(f.rows) != m.Height {
		return false
	}
	for _, row := range f.rows {
		if len(row) != m.Width {
			return false
		}
	}
	return true
}
