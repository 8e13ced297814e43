package metrics

import "github.com/san-kum/firesim/internal/grid"

// Stats is the per-frame category tally of a run. Row i always describes
// frame i, so every category series has the same length.
type Stats struct {
	rows []grid.Counts
}

func NewStats() *Stats {
	return &Stats{}
}

// Append counts f and records the result as the next row.
func (s *Stats) Append(f grid.Frame) grid.Counts {
	c := grid.Count(f)
	s.rows = append(s.rows, c)
	return c
}

// AppendCounts records an already computed tally, for stats read back
// from an archive.
func (s *Stats) AppendCounts(c grid.Counts) {
	s.rows = append(s.rows, c)
}

func (s *Stats) Len() int { return len(s.rows) }

func (s *Stats) At(i int) (grid.Counts, bool) {
	if i < 0 || i >= len(s.rows) {
		return grid.Counts{}, false
	}
	return s.rows[i], true
}

func (s *Stats) Last() (grid.Counts, bool) { return s.At(len(s.rows) - 1) }

// Rows returns every tally in frame order. The slice must not be modified.
func (s *Stats) Rows() []grid.Counts { return s.rows }

// Series returns one category's counts for the first n frames, clamped to
// what has been recorded. Charts pass current+1 so the plot never runs
// ahead of the frame on screen.
func (s *Stats) Series(c grid.Category, n int) []float64 {
	if n > len(s.rows) {
		n = len(s.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(s.rows[i][c])
	}
	return out
}

// Table returns every category as its own series, in Categories order.
func (s *Stats) Table(n int) map[grid.Category][]float64 {
	out := make(map[grid.Category][]float64, grid.NumCategories)
	for _, c := range grid.Categories() {
		out[c] = s.Series(c, n)
	}
	return out
}
