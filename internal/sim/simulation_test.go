package sim

import (
	"testing"

	"github.com/san-kum/firesim/internal/grid"
)

func frame(code string) grid.Frame {
	return grid.NewFrame([][]string{{code}})
}

func TestSimulationAppend(t *testing.T) {
	s := New(grid.Metadata{Width: 1, Height: 1})

	if s.Len() != 0 || s.Current() != 0 {
		t.Fatalf("expected empty history at 0, got len=%d current=%d", s.Len(), s.Current())
	}
	if _, ok := s.CurrentFrame(); ok {
		t.Error("expected no current frame on an empty history")
	}

	for _, c := range []string{"T", "*", "A"} {
		s.Append(frame(c))
	}

	if s.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", s.Len())
	}
	if s.Current() != 0 {
		t.Errorf("append must not move the cursor, got %d", s.Current())
	}
	f, ok := s.CurrentFrame()
	if !ok || f.Cell(0, 0) != "T" {
		t.Errorf("expected first frame under cursor, got %q", f.Cell(0, 0))
	}
	last, _ := s.Last()
	if last.Cell(0, 0) != "A" {
		t.Errorf("expected last frame A, got %q", last.Cell(0, 0))
	}
}

func TestSimulationSetCurrentClamps(t *testing.T) {
	s := FromFrames(grid.Metadata{Width: 1, Height: 1},
		[]grid.Frame{frame("0"), frame("1"), frame("2"), frame("3"), frame("4")})

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"inside", 2, 2},
		{"last", 4, 4},
		{"past end", 9999, 4},
		{"negative", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetCurrent(tt.in)
			if s.Current() != tt.want {
				t.Errorf("SetCurrent(%d): expected %d, got %d", tt.in, tt.want, s.Current())
			}
		})
	}
}

func TestSimulationEmptyClamp(t *testing.T) {
	s := New(grid.Metadata{Width: 2, Height: 2})
	s.SetCurrent(7)
	if s.Current() != 0 {
		t.Errorf("expected cursor 0 without frames, got %d", s.Current())
	}
	if s.Width() != 2 || s.Height() != 2 {
		t.Errorf("unexpected shape %dx%d", s.Width(), s.Height())
	}
}
