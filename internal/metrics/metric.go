package metrics

import (
	"math"

	"github.com/san-kum/firesim/internal/grid"
)

// Metric folds the per-frame tallies of a run into one number.
type Metric interface {
	Name() string
	Observe(c grid.Counts)
	Value() float64
	Reset()
}

// BurnedPercent is the share of the first frame's vegetation that is ash
// in the most recently observed frame.
type BurnedPercent struct {
	initial int64
	seen    bool
	value   float64
}

func NewBurnedPercent() *BurnedPercent { return &BurnedPercent{} }

func (m *BurnedPercent) Name() string { return "burned_percent" }

func (m *BurnedPercent) Observe(c grid.Counts) {
	if !m.seen {
		m.initial = c.Vegetation()
		m.seen = true
	}
	m.value = percent(c.Burned(), m.initial)
}

func (m *BurnedPercent) Value() float64 { return m.value }

func (m *BurnedPercent) Reset() { *m = BurnedPercent{} }

// MaxBurnedPercent is the highest BurnedPercent seen over the run.
type MaxBurnedPercent struct {
	cur BurnedPercent
	max float64
}

func NewMaxBurnedPercent() *MaxBurnedPercent { return &MaxBurnedPercent{} }

func (m *MaxBurnedPercent) Name() string { return "max_burned_percent" }

func (m *MaxBurnedPercent) Observe(c grid.Counts) {
	m.cur.Observe(c)
	m.max = math.Max(m.max, m.cur.Value())
}

func (m *MaxBurnedPercent) Value() float64 { return m.max }

func (m *MaxBurnedPercent) Reset() { *m = MaxBurnedPercent{} }

// PeakFront is the largest number of cells burning at once.
type PeakFront struct {
	peak int64
}

func NewPeakFront() *PeakFront { return &PeakFront{} }

func (m *PeakFront) Name() string { return "peak_fire_front" }

func (m *PeakFront) Observe(c grid.Counts) {
	if b := c.Burning(); b > m.peak {
		m.peak = b
	}
}

func (m *PeakFront) Value() float64 { return float64(m.peak) }

func (m *PeakFront) Reset() { m.peak = 0 }

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
