package experiment

import (
	"fmt"
	"strconv"

	"github.com/san-kum/firesim/internal/control"
)

// Params are the knobs of one simulation run. Width through
// StepsBetweenThunder are fixed at launch; the weather fields can also be
// changed mid-run through the control file.
type Params struct {
	Width               int     `yaml:"width" json:"width"`
	Height              int     `yaml:"height" json:"height"`
	BurningTrees        int     `yaml:"burning_trees" json:"burning_trees"`
	BurningGrasses      int     `yaml:"burning_grasses" json:"burning_grasses"`
	ThunderEnabled      bool    `yaml:"thunder_enabled" json:"thunder_enabled"`
	ThunderPercentage   float64 `yaml:"thunder_percentage" json:"thunder_percentage"`
	StepsBetweenThunder int     `yaml:"steps_between_thunder" json:"steps_between_thunder"`
	WindEnabled         bool    `yaml:"wind_enabled" json:"wind_enabled"`
	WindAngle           float64 `yaml:"wind_angle" json:"wind_angle"`
	WindStrength        float64 `yaml:"wind_strength" json:"wind_strength"`
}

func DefaultParams() Params {
	return Params{
		Width:               20,
		Height:              20,
		BurningTrees:        15,
		BurningGrasses:      20,
		StepsBetweenThunder: 1,
	}
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrParams, p.Width, p.Height)
	}
	if p.BurningTrees < 0 || p.BurningGrasses < 0 {
		return fmt.Errorf("%w: initial fire counts must not be negative", ErrParams)
	}
	if p.ThunderPercentage < 0 || p.ThunderPercentage > 100 {
		return fmt.Errorf("%w: thunder percentage %.2f outside [0, 100]", ErrParams, p.ThunderPercentage)
	}
	if p.StepsBetweenThunder < 1 {
		return fmt.Errorf("%w: steps between thunder must be at least 1", ErrParams)
	}
	if p.WindStrength < 0 {
		return fmt.Errorf("%w: wind strength must not be negative", ErrParams)
	}
	return nil
}

// Args renders the parameters in the positional order the launch script
// expects.
func (p Params) Args() []string {
	return []string{
		strconv.Itoa(p.Width),
		strconv.Itoa(p.Height),
		strconv.Itoa(p.BurningTrees),
		strconv.Itoa(p.BurningGrasses),
		strconv.FormatBool(p.ThunderEnabled),
		formatFloat(p.ThunderPercentage),
		strconv.Itoa(p.StepsBetweenThunder),
		strconv.FormatBool(p.WindEnabled),
		formatFloat(p.WindAngle),
		formatFloat(p.WindStrength),
	}
}

// ControlRecord is the control file a run starts from: unpaused, no step
// pending, and the weather fields of p.
func (p Params) ControlRecord() control.Record {
	return control.Record{
		Paused:            control.Bool(false),
		Step:              control.Bool(false),
		ThunderEnabled:    control.Bool(p.ThunderEnabled),
		ThunderPercentage: control.Float(p.ThunderPercentage),
		WindEnabled:       control.Bool(p.WindEnabled),
		WindAngle:         control.Float(p.WindAngle),
		WindStrength:      control.Float(p.WindStrength),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
