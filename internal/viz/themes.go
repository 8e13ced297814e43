package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/firesim/internal/grid"
)

// Theme defines the color scheme for the TUI
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	// Cells colors the grid, one entry per category.
	Cells [grid.NumCategories]lipgloss.Color
	// Empty is used for cells outside any category, such as a short row.
	Empty lipgloss.Color
}

// Available themes
var (
	ThemeForest = Theme{
		Name:    "forest",
		Primary: lipgloss.Color("#ff8800"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#f0f0f0"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
		Cells: [grid.NumCategories]lipgloss.Color{
			grid.Trees:          "#1f7a1f",
			grid.BurningTrees:   "#ff3300",
			grid.TreeAshes:      "#3a3a3a",
			grid.Grasses:        "#8fd14f",
			grid.BurningGrasses: "#ffaa00",
			grid.GrassAshes:     "#7a7a7a",
			grid.Water:          "#1e90ff",
		},
		Empty: "#000000",
	}

	ThemeEmber = Theme{
		Name:    "ember",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
		Cells: [grid.NumCategories]lipgloss.Color{
			grid.Trees:          "#2d6a4f",
			grid.BurningTrees:   "#ff4757",
			grid.TreeAshes:      "#2d1b2e",
			grid.Grasses:        "#95d5b2",
			grid.BurningGrasses: "#ff9f43",
			grid.GrassAshes:     "#5c4b5d",
			grid.Water:          "#48dbfb",
		},
		Empty: "#000000",
	}

	// ThemeMono is for terminals without color: categories differ by shade.
	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#dddddd"),
		Error:   lipgloss.Color("#ffffff"),
		Cells: [grid.NumCategories]lipgloss.Color{
			grid.Trees:          "#555555",
			grid.BurningTrees:   "#ffffff",
			grid.TreeAshes:      "#222222",
			grid.Grasses:        "#999999",
			grid.BurningGrasses: "#dddddd",
			grid.GrassAshes:     "#444444",
			grid.Water:          "#777777",
		},
		Empty: "#000000",
	}

	Themes = []Theme{
		ThemeForest,
		ThemeEmber,
		ThemeMono,
	}
)

// GetTheme returns a theme by name, falling back to the forest theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeForest
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
