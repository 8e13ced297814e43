package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	playing lipgloss.Style
	paused  lipgloss.Style
	err     lipgloss.Style
	panel   lipgloss.Style
	graph   lipgloss.Style
	cells   []lipgloss.Style
	empty   lipgloss.Style
}

func newStyles(t Theme) styles {
	s := styles{
		header:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(16),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		playing: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		err:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2),
		graph: lipgloss.NewStyle().Padding(1, 0),
		empty: lipgloss.NewStyle().Background(t.Empty),
	}
	for _, c := range t.Cells {
		s.cells = append(s.cells, lipgloss.NewStyle().Background(c))
	}
	return s
}

// swatch is a small colored block used as a legend marker.
func (s styles) swatch(i int) string {
	return s.cells[i].Render("  ")
}

// ProgressBar renders percent (0..1) as a bar of the given width.
func ProgressBar(percent float64, width int, t Theme) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(t.Primary).Render(bar)
}

// Sparkline renders the last width values as a one-line bar chart scaled
// to their maximum.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	highest := 0.0
	for _, v := range values {
		if v > highest {
			highest = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if highest > 0 {
			idx = int(v / highest * float64(len(chars)-1))
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}

func Separator(width int, t Theme) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	line := strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-2)
	return lipgloss.NewStyle().Foreground(t.Muted).Render(line)
}
