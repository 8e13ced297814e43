package control

// Record is the control file's content. Every field is optional: a nil field
// means "unchanged" to readers and "keep the persisted value" to Store.Write.
type Record struct {
	Paused            *bool    `json:"paused,omitempty"`
	Step              *bool    `json:"step,omitempty"`
	ThunderEnabled    *bool    `json:"thunderEnabled,omitempty"`
	ThunderPercentage *float64 `json:"thunderPercentage,omitempty"`
	WindEnabled       *bool    `json:"windEnabled,omitempty"`
	WindAngle         *float64 `json:"windAngle,omitempty"`
	WindStrength      *float64 `json:"windStrength,omitempty"`
}

// Bool returns a pointer to v for building partial records.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v for building partial records.
func Float(v float64) *float64 { return &v }

// Merge applies the fields set in update on top of r. The one-shot step
// request is false unless update asks for a step.
func (r Record) Merge(update Record) Record {
	out := r
	if update.Paused != nil {
		out.Paused = Bool(*update.Paused)
	}
	if update.ThunderEnabled != nil {
		out.ThunderEnabled = Bool(*update.ThunderEnabled)
	}
	if update.ThunderPercentage != nil {
		out.ThunderPercentage = Float(*update.ThunderPercentage)
	}
	if update.WindEnabled != nil {
		out.WindEnabled = Bool(*update.WindEnabled)
	}
	if update.WindAngle != nil {
		out.WindAngle = Float(*update.WindAngle)
	}
	if update.WindStrength != nil {
		out.WindStrength = Float(*update.WindStrength)
	}
	out.Step = Bool(update.Step != nil && *update.Step)
	return out
}

// IsPaused reports the persisted pause flag, treating absent as false.
func (r Record) IsPaused() bool { return r.Paused != nil && *r.Paused }

// StepRequested reports whether a step is pending for the external process.
func (r Record) StepRequested() bool { return r.Step != nil && *r.Step }
