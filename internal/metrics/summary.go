package metrics

import "github.com/san-kum/firesim/internal/grid"

// Summary describes how a run burned.
type Summary struct {
	Frames            int     `json:"frames"`
	InitialVegetation int64   `json:"initial_vegetation"`
	BurnedPercent     float64 `json:"burned_percent"`
	MaxBurnedPercent  float64 `json:"max_burned_percent"`
	PeakFront         int64   `json:"peak_fire_front"`
	PeakFrame         int     `json:"peak_frame"`
	// Extinguished is true when the newest frame has no burning cells.
	Extinguished bool `json:"extinguished"`
}

// Tracker folds frame tallies through the burn metrics as they arrive.
type Tracker struct {
	final   *BurnedPercent
	highest *MaxBurnedPercent
	peak    *PeakFront
	all     []Metric

	frames  int
	initial int64
	peakAt  int
	last    grid.Counts
}

func NewTracker() *Tracker {
	t := &Tracker{
		final:   NewBurnedPercent(),
		highest: NewMaxBurnedPercent(),
		peak:    NewPeakFront(),
	}
	t.all = []Metric{t.final, t.highest, t.peak}
	return t
}

// Track builds a tracker over every row already in s.
func Track(s *Stats) *Tracker {
	t := NewTracker()
	for _, c := range s.Rows() {
		t.Observe(c)
	}
	return t
}

func (t *Tracker) Observe(c grid.Counts) {
	before := t.peak.Value()
	for _, m := range t.all {
		m.Observe(c)
	}
	if t.frames == 0 {
		t.initial = c.Vegetation()
	}
	if t.peak.Value() > before {
		t.peakAt = t.frames
	}
	t.last = c
	t.frames++
}

// Reset forgets every observed frame.
func (t *Tracker) Reset() {
	for _, m := range t.all {
		m.Reset()
	}
	t.frames, t.initial, t.peakAt = 0, 0, 0
	t.last = grid.Counts{}
}

func (t *Tracker) Len() int { return t.frames }

func (t *Tracker) Summary() Summary {
	sum := Summary{
		Frames:            t.frames,
		InitialVegetation: t.initial,
		BurnedPercent:     t.final.Value(),
		MaxBurnedPercent:  t.highest.Value(),
		PeakFront:         int64(t.peak.Value()),
		PeakFrame:         t.peakAt,
	}
	if t.frames > 0 {
		sum.Extinguished = t.last.Burning() == 0
	}
	return sum
}

// Values returns every metric by name plus the frame count, for archiving.
func (t *Tracker) Values() map[string]float64 {
	out := make(map[string]float64, len(t.all)+1)
	out["frames"] = float64(t.frames)
	for _, m := range t.all {
		out[m.Name()] = m.Value()
	}
	return out
}

// Summarize folds every recorded row through the burn metrics.
func Summarize(s *Stats) Summary { return Track(s).Summary() }

// Burning reports the burning cells in the newest row, or 0 with none.
func Burning(s *Stats) int64 {
	last, ok := s.Last()
	if !ok {
		return 0
	}
	return last.Burning()
}
