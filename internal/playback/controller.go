package playback

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultSpeed = 0.4
	MinSpeed     = 0.05
	MaxSpeed     = 2.0
)

// EndPolicy decides what auto-advance does on the last frame.
type EndPolicy int

const (
	// EndPause holds the last frame and pauses.
	EndPause EndPolicy = iota
	// EndLoop wraps to the first frame and keeps playing.
	EndLoop
)

func (p EndPolicy) String() string {
	if p == EndLoop {
		return "loop"
	}
	return "pause"
}

func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pause":
		return EndPause, nil
	case "loop":
		return EndLoop, nil
	default:
		return EndPause, fmt.Errorf("playback: unknown end policy %q (want pause or loop)", s)
	}
}

// Cursor is the frame history a controller navigates.
type Cursor interface {
	Len() int
	Current() int
	SetCurrent(i int)
}

// Move says which rule moved the cursor on a tick.
type Move int

const (
	MoveNone Move = iota
	MoveJump
	MoveBack
	MoveForward
	MoveAuto
)

func (m Move) String() string {
	return [...]string{"none", "jump", "back", "forward", "auto"}[m]
}

// Controller is the playback state machine. Paused and speed persist;
// step and jump requests are consumed by the tick that acts on them.
type Controller struct {
	paused      bool
	stepForward bool
	stepBack    bool
	jump        int
	jumpPending bool

	speed  float64
	policy EndPolicy
	timer  *Timer
}

// New returns a paused controller with no pending requests.
func New(speed float64, policy EndPolicy) *Controller {
	c := &Controller{paused: true, policy: policy, timer: NewTimer(0)}
	c.SetSpeed(speed)
	return c
}

func (c *Controller) Paused() bool          { return c.paused }
func (c *Controller) Speed() float64        { return c.speed }
func (c *Controller) Policy() EndPolicy     { return c.policy }
func (c *Controller) SetPolicy(p EndPolicy) { c.policy = p }

// Pending reports whether a step or jump is waiting for the next tick.
func (c *Controller) Pending() bool {
	return c.jumpPending || c.stepBack || c.stepForward
}

func (c *Controller) Pause()  { c.paused = true }
func (c *Controller) Resume() { c.paused = false }
func (c *Controller) Toggle() { c.paused = !c.paused }

func (c *Controller) StepForward() { c.stepForward = true }
func (c *Controller) StepBack()    { c.stepBack = true }

// JumpTo requests frame i. Out-of-range requests are clamped when applied.
func (c *Controller) JumpTo(i int) {
	c.jump = i
	c.jumpPending = true
}

func (c *Controller) First() { c.JumpTo(0) }
func (c *Controller) Last()  { c.JumpTo(math.MaxInt) }

// SetSpeed sets seconds per frame, clamped to [MinSpeed, MaxSpeed].
func (c *Controller) SetSpeed(seconds float64) {
	if math.IsNaN(seconds) || seconds <= 0 {
		seconds = DefaultSpeed
	}
	c.speed = math.Min(math.Max(seconds, MinSpeed), MaxSpeed)
	c.timer.SetPeriod(time.Duration(c.speed * float64(time.Second)))
}

// Rearm returns to the state for a fresh run: paused, holding a jump to
// the first frame until frames exist.
func (c *Controller) Rearm() {
	c.paused = true
	c.stepForward = false
	c.stepBack = false
	c.timer.Reset()
	c.JumpTo(0)
}

// Tick applies at most one cursor move. The first matching rule wins and
// clears the lower requests: jump, then step back, then step forward, then
// auto-advance. With no frames nothing is consumed.
func (c *Controller) Tick(cur Cursor, elapsed time.Duration) Move {
	n := cur.Len()
	if n == 0 {
		return MoveNone
	}

	switch {
	case c.jumpPending:
		cur.SetCurrent(clamp(c.jump, n))
		c.clearRequests()
		return MoveJump
	case c.stepBack:
		cur.SetCurrent(clamp(cur.Current()-1, n))
		c.clearRequests()
		return MoveBack
	case c.stepForward:
		cur.SetCurrent(clamp(cur.Current()+1, n))
		c.clearRequests()
		return MoveForward
	}

	if c.paused || !c.timer.Advance(elapsed) {
		return MoveNone
	}

	if i := cur.Current(); i < n-1 {
		cur.SetCurrent(i + 1)
		return MoveAuto
	}
	if c.policy == EndLoop && n > 1 {
		cur.SetCurrent(0)
		return MoveAuto
	}
	c.paused = true
	return MoveNone
}

func (c *Controller) clearRequests() {
	c.jumpPending = false
	c.stepBack = false
	c.stepForward = false
	c.timer.Reset()
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
