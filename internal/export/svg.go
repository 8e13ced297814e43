package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/firesim/internal/grid"
)

// Palette is the fill used for each category in SVG output.
var Palette = map[grid.Category]string{
	grid.Trees:          "#2e7d32",
	grid.BurningTrees:   "#ff5722",
	grid.TreeAshes:      "#616161",
	grid.Grasses:        "#9ccc65",
	grid.BurningGrasses: "#ffb300",
	grid.GrassAshes:     "#9e9e9e",
	grid.Water:          "#1e88e5",
}

// Series is one named line of a chart.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// FrameToSVG draws every cell of f as a square of the given size.
func FrameToSVG(f grid.Frame, cell int) string {
	if f.Width() == 0 || f.Height() == 0 {
		return ""
	}
	if cell <= 0 {
		cell = 8
	}
	width := f.Width() * cell
	height := f.Height() * cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for y, row := range f.Rows() {
		for x, code := range row {
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>
`, x*cell, y*cell, cell, cell, Palette[grid.Classify(code)]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots each series as a polyline over a shared frame axis.
func SeriesToSVG(series []Series, width, height int) string {
	n := 0
	maxY := 0.0
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
		for _, v := range s.Values {
			if v > maxY {
				maxY = v
			}
		}
	}
	if n < 2 {
		return ""
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1
	stepX := float64(width) / float64(n-1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for j, v := range s.Values {
			x := float64(j) * stepX
			y := float64(height) - v/maxY*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(`"/>
`)
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+i*14, s.Color, s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CategorySeries builds one chart line per category from a stats table.
func CategorySeries(table map[grid.Category][]float64, cats []grid.Category) []Series {
	out := make([]Series, 0, len(cats))
	for _, c := range cats {
		out = append(out, Series{Name: c.Label(), Color: Palette[c], Values: table[c]})
	}
	return out
}
