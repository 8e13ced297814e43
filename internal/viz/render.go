package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/metrics"
)

const cellWidth = 2

// sampleStep is the smallest stride that fits a w×h grid into maxW columns
// and maxH rows when each cell takes cellWidth columns. Non-positive limits
// mean unbounded.
func sampleStep(w, h, maxW, maxH int) int {
	step := 1
	for {
		fitsW := maxW <= 0 || (w+step-1)/step*cellWidth <= maxW
		fitsH := maxH <= 0 || (h+step-1)/step <= maxH
		if fitsW && fitsH {
			return step
		}
		step++
	}
}

// renderGrid draws f as colored blocks, sampling every step-th cell when it
// does not fit. Adjacent cells of one category share a styled run.
func renderGrid(f grid.Frame, st styles, maxW, maxH int) string {
	step := sampleStep(f.Width(), f.Height(), maxW, maxH)

	var b strings.Builder
	for y := 0; y < f.Height(); y += step {
		row := f.Row(y)
		run, runLen := -1, 0
		flush := func() {
			if runLen == 0 {
				return
			}
			style := st.empty
			if run >= 0 {
				style = st.cells[run]
			}
			b.WriteString(style.Render(strings.Repeat(" ", runLen*cellWidth)))
		}
		for x := 0; x < f.Width(); x += step {
			cat := -1
			if x < len(row) {
				cat = int(grid.Classify(row[x]))
			}
			if cat != run {
				flush()
				run, runLen = cat, 0
			}
			runLen++
		}
		flush()
		if y+step < f.Height() {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// chartGroups pairs each chart with the categories it plots.
var chartGroups = []struct {
	caption string
	cats    []grid.Category
}{
	{"Burning", []grid.Category{grid.BurningTrees, grid.BurningGrasses}},
	{"Vegetation", []grid.Category{grid.Trees, grid.Grasses}},
	{"Ash", []grid.Category{grid.TreeAshes, grid.GrassAshes}},
}

var chartColors = map[grid.Category]asciigraph.AnsiColor{
	grid.Trees:          asciigraph.Green,
	grid.BurningTrees:   asciigraph.Red,
	grid.TreeAshes:      asciigraph.DarkGray,
	grid.Grasses:        asciigraph.YellowGreen,
	grid.BurningGrasses: asciigraph.Orange,
	grid.GrassAshes:     asciigraph.Gray,
	grid.Water:          asciigraph.Blue,
}

// renderCharts plots the stats of frames 0..n-1, so the charts follow the
// playback cursor rather than the newest frame.
func renderCharts(stats *metrics.Stats, n, width int, st styles) string {
	if n < 2 {
		return st.muted.Render("(charts appear after two frames)")
	}
	if width < 20 {
		width = 20
	}

	var parts []string
	for _, g := range chartGroups {
		data := make([][]float64, 0, len(g.cats))
		colors := make([]asciigraph.AnsiColor, 0, len(g.cats))
		legend := make([]string, 0, len(g.cats))
		for _, c := range g.cats {
			data = append(data, stats.Series(c, n))
			colors = append(colors, chartColors[c])
			legend = append(legend, st.swatch(int(c))+" "+c.Label())
		}
		chart := asciigraph.PlotMany(data,
			asciigraph.Height(5),
			asciigraph.Width(width),
			asciigraph.LowerBound(0),
			asciigraph.Precision(0),
			asciigraph.SeriesColors(colors...),
			asciigraph.Caption(g.caption))
		parts = append(parts, st.graph.Render(chart)+"\n"+strings.Join(legend, "   "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// burningTrend is the total number of burning cells in frames 0..n-1.
func burningTrend(stats *metrics.Stats, n int) []float64 {
	trees := stats.Series(grid.BurningTrees, n)
	grasses := stats.Series(grid.BurningGrasses, n)
	out := make([]float64, len(trees))
	for i := range trees {
		out[i] = trees[i] + grasses[i]
	}
	return out
}

// renderCounts lists the category counts of one frame.
func renderCounts(c grid.Counts, st styles) string {
	var b strings.Builder
	for _, cat := range grid.Categories() {
		fmt.Fprintf(&b, "%s %s%s\n", st.swatch(int(cat)), st.label.Render(cat.Label()), st.value.Render(fmt.Sprintf("%d", c[cat])))
	}
	return b.String()
}
