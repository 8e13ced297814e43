package config

import (
	"sort"

	"github.com/san-kum/firesim/internal/experiment"
)

var Presets = map[string]experiment.Params{
	"calm": {
		Width: 40, Height: 40, BurningTrees: 5, BurningGrasses: 10,
		StepsBetweenThunder: 1,
	},
	"breezy": {
		Width: 40, Height: 40, BurningTrees: 5, BurningGrasses: 10,
		StepsBetweenThunder: 1,
		WindEnabled: true, WindAngle: 45, WindStrength: 10,
	},
	"windy": {
		Width: 60, Height: 60, BurningTrees: 5, BurningGrasses: 10,
		StepsBetweenThunder: 1,
		WindEnabled: true, WindAngle: 90, WindStrength: 30,
	},
	"storm": {
		Width: 60, Height: 60, BurningTrees: 2, BurningGrasses: 2,
		ThunderEnabled: true, ThunderPercentage: 5, StepsBetweenThunder: 10,
		WindEnabled: true, WindAngle: 180, WindStrength: 40,
	},
	"dry": {
		Width: 100, Height: 100, BurningTrees: 15, BurningGrasses: 20,
		StepsBetweenThunder: 1,
		WindEnabled: true, WindAngle: 0, WindStrength: 5,
	},
}

// GetPreset returns the named run parameters.
func GetPreset(name string) (experiment.Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
