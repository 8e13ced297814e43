package playback

import "time"

// Timer accumulates tick time and reports when a full period has passed.
// It fires at most once per Advance; surplus time beyond one extra period
// is dropped so a long stall does not turn into a burst of frames.
type Timer struct {
	period time.Duration
	acc    time.Duration
}

func NewTimer(period time.Duration) *Timer {
	t := &Timer{}
	t.SetPeriod(period)
	return t
}

// SetPeriod changes the interval without discarding time already
// accumulated toward the next fire.
func (t *Timer) SetPeriod(period time.Duration) {
	if period <= 0 {
		period = time.Millisecond
	}
	t.period = period
}

func (t *Timer) Period() time.Duration  { return t.period }
func (t *Timer) Elapsed() time.Duration { return t.acc }

// Advance adds elapsed and reports whether the timer is due.
func (t *Timer) Advance(elapsed time.Duration) bool {
	if elapsed > 0 {
		t.acc += elapsed
	}
	if t.acc < t.period {
		return false
	}
	t.acc -= t.period
	if t.acc >= t.period {
		t.acc %= t.period
	}
	return true
}

// Reset starts a fresh interval.
func (t *Timer) Reset() { t.acc = 0 }
