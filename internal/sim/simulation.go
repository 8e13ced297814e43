package sim

import "github.com/san-kum/firesim/internal/grid"

// Simulation is the replay history of one run: every frame received so
// far plus the playback cursor. Frames are only ever appended.
type Simulation struct {
	meta    grid.Metadata
	frames  []grid.Frame
	current int
}

func New(meta grid.Metadata) *Simulation {
	return &Simulation{meta: meta}
}

// FromFrames builds a finished history, for replaying a recorded run.
func FromFrames(meta grid.Metadata, frames []grid.Frame) *Simulation {
	s := New(meta)
	s.frames = append(s.frames, frames...)
	return s
}

func (s *Simulation) Metadata() grid.Metadata { return s.meta }
func (s *Simulation) Width() int              { return s.meta.Width }
func (s *Simulation) Height() int             { return s.meta.Height }
func (s *Simulation) Len() int                { return len(s.frames) }

// Append adds f as the newest frame. The cursor does not move.
func (s *Simulation) Append(f grid.Frame) {
	s.frames = append(s.frames, f)
}

// Current is the cursor position. It is 0 while the history is empty.
func (s *Simulation) Current() int { return s.current }

// SetCurrent moves the cursor to i clamped into [0, Len-1]. With no
// frames the cursor stays at 0.
func (s *Simulation) SetCurrent(i int) {
	s.current = s.Clamp(i)
}

// Clamp maps any index into the valid frame range.
func (s *Simulation) Clamp(i int) int {
	if len(s.frames) == 0 || i < 0 {
		return 0
	}
	if i >= len(s.frames) {
		return len(s.frames) - 1
	}
	return i
}

// CurrentFrame returns the frame under the cursor.
func (s *Simulation) CurrentFrame() (grid.Frame, bool) {
	return s.Frame(s.current)
}

func (s *Simulation) Frame(i int) (grid.Frame, bool) {
	if i < 0 || i >= len(s.frames) {
		return grid.Frame{}, false
	}
	return s.frames[i], true
}

// Last returns the newest frame.
func (s *Simulation) Last() (grid.Frame, bool) {
	return s.Frame(len(s.frames) - 1)
}

// Frames returns the history. The slice must not be modified.
func (s *Simulation) Frames() []grid.Frame { return s.frames }
