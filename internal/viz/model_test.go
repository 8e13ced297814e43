package viz

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/session"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func batch(n int) (grid.Metadata, []grid.Frame) {
	frames := make([]grid.Frame, n)
	for i := range frames {
		frames[i] = grid.NewFrame([][]string{{"T", "*"}, {"G", "A"}})
	}
	return grid.Metadata{Width: 2, Height: 2}, frames
}

func newTestModel(t *testing.T, cfg session.Config) (Model, *session.Session) {
	t.Helper()
	s := session.New(cfg)
	t.Cleanup(s.Close)
	meta, frames := batch(5)
	s.LoadBatch(meta, frames)
	return NewModel(Options{Session: s, Interval: 10 * time.Millisecond}), s
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func at(d time.Duration) tea.Msg { return TickMsg(t0.Add(d)) }

func runes(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelStepKeys(t *testing.T) {
	m, s := newTestModel(t, session.Config{})

	m = send(m, at(0))
	if s.Current() != 0 {
		t.Fatalf("expected frame 0 after first tick, got %d", s.Current())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRight}, at(10*time.Millisecond))
	m = send(m, tea.KeyMsg{Type: tea.KeyRight}, at(20*time.Millisecond))
	if s.Current() != 2 {
		t.Errorf("expected frame 2, got %d", s.Current())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyLeft}, at(30*time.Millisecond))
	if s.Current() != 1 {
		t.Errorf("expected frame 1, got %d", s.Current())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEnd}, at(40*time.Millisecond))
	if s.Current() != 4 {
		t.Errorf("expected last frame, got %d", s.Current())
	}

	send(m, tea.KeyMsg{Type: tea.KeyHome}, at(50*time.Millisecond))
	if s.Current() != 0 {
		t.Errorf("expected first frame, got %d", s.Current())
	}
}

func TestModelAutoAdvance(t *testing.T) {
	m, s := newTestModel(t, session.Config{})
	m = send(m, at(0), tea.KeyMsg{Type: tea.KeySpace})
	if s.Playback().Paused() {
		t.Fatal("expected playback to resume")
	}

	speed := time.Duration(s.Playback().Speed() * float64(time.Second))
	m = send(m, at(speed/2))
	if s.Current() != 0 {
		t.Errorf("advanced before a full period: %d", s.Current())
	}
	send(m, at(speed))
	if s.Current() != 1 {
		t.Errorf("expected frame 1 after one period, got %d", s.Current())
	}
}

func TestModelSpeedKeys(t *testing.T) {
	m, s := newTestModel(t, session.Config{Speed: 1})

	m = send(m, runes("+"))
	if got := s.Playback().Speed(); got != 0.8 {
		t.Errorf("expected 0.8s per frame, got %v", got)
	}
	send(m, runes("-"), runes("-"))
	if got := s.Playback().Speed(); got != 1.25 {
		t.Errorf("expected 1.25s per frame, got %v", got)
	}
}

func TestModelNewRunDisabled(t *testing.T) {
	m, s := newTestModel(t, session.Config{})
	gen := s.Gen()

	m = send(m, runes("n"))
	if s.Gen() != gen {
		t.Error("new run started without permission")
	}
	if m.status == "" {
		t.Error("expected a status message")
	}
}

func TestModelTunables(t *testing.T) {
	store := control.NewStore(filepath.Join(t.TempDir(), "sim_control.json"))
	m, _ := newTestModel(t, session.Config{Control: store})

	m = send(m, runes("w"), runes("d"), runes("d"), runes("x"), runes("t"))
	if m.status != "" {
		t.Fatalf("unexpected status %q", m.status)
	}

	rec, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !*rec.WindEnabled || *rec.WindAngle != 30 || *rec.WindStrength != 1 || !*rec.ThunderEnabled {
		t.Errorf("unexpected control record %+v", rec)
	}

	m = send(m, runes("a"), runes("a"), runes("a"))
	if m.params.WindAngle != 345 {
		t.Errorf("expected angle to wrap to 345, got %v", m.params.WindAngle)
	}

	send(m, runes("p"))
	rec, _ = store.Read()
	if !rec.IsPaused() {
		t.Error("expected simulation to be paused")
	}
}

func TestModelAdoptsControlFile(t *testing.T) {
	store := control.NewStore(filepath.Join(t.TempDir(), "sim_control.json"))
	if _, err := store.Write(control.Record{WindEnabled: control.Bool(true), WindAngle: control.Float(90), Paused: control.Bool(true)}); err != nil {
		t.Fatal(err)
	}

	s := session.New(session.Config{Control: store})
	m := NewModel(Options{Session: s, Params: experiment.DefaultParams()})
	if !m.params.WindEnabled || m.params.WindAngle != 90 || !m.simPaused {
		t.Errorf("control state not adopted: %+v paused=%v", m.params, m.simPaused)
	}
}

func TestModelTunableWithoutControl(t *testing.T) {
	m, _ := newTestModel(t, session.Config{})
	m = send(m, runes("w"))
	if !strings.Contains(m.status, "no control file") {
		t.Errorf("expected control error, got %q", m.status)
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t, session.Config{})
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40}, at(0), tea.KeyMsg{Type: tea.KeyRight}, at(time.Millisecond))

	view := m.View()
	for _, want := range []string{"FIRESIM", "frame 2/5", "PAUSED", "Burning Trees", "Wind angle"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	idle := NewModel(Options{Session: session.New(session.Config{}), CanLaunch: true})
	if !strings.Contains(idle.View(), "Press n") {
		t.Error("idle view should offer to start a run")
	}
}

func TestSampleStep(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		want             int
	}{
		{10, 10, 40, 20, 1},
		{10, 10, 0, 0, 1},
		{100, 100, 100, 100, 2},
		{100, 50, 200, 10, 5},
		{30, 30, 20, 0, 3},
	}

	for _, tt := range tests {
		if got := sampleStep(tt.w, tt.h, tt.maxW, tt.maxH); got != tt.want {
			t.Errorf("sampleStep(%d, %d, %d, %d): expected %d, got %d", tt.w, tt.h, tt.maxW, tt.maxH, tt.want, got)
		}
	}
}

func TestRenderGridShape(t *testing.T) {
	rows := make([][]string, 6)
	for y := range rows {
		rows[y] = []string{"T", "T", "*", "W", "G", "-"}
	}
	st := newStyles(ThemeForest)

	out := renderGrid(grid.NewFrame(rows), st, 0, 0)
	if n := len(strings.Split(out, "\n")); n != 6 {
		t.Errorf("expected 6 rows, got %d", n)
	}

	out = renderGrid(grid.NewFrame(rows), st, 6, 3)
	if n := len(strings.Split(out, "\n")); n != 3 {
		t.Errorf("expected 3 sampled rows, got %d", n)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for in, want := range map[float64]float64{0: 0, 375: 15, -15: 345, 720: 0} {
		if got := normalizeAngle(in); got != want {
			t.Errorf("normalizeAngle(%v): expected %v, got %v", in, want, got)
		}
	}
}
