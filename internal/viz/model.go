package viz

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/session"
)

const (
	DefaultInterval = time.Second / 30

	panelWidth    = 42
	windAngleStep = 15.0
	windStep      = 1.0
	speedFactor   = 1.25
)

type TickMsg time.Time

type Options struct {
	Session *session.Session
	// Params start new runs and seed the tunables shown in the panel.
	Params experiment.Params
	// CanLaunch enables starting runs from the UI. It is off when
	// attached to a simulation started elsewhere or replaying a file.
	CanLaunch bool
	Interval  time.Duration
	Theme     string
	Title     string
	Context   context.Context
	Logger    *slog.Logger
}

// Model is the Bubble Tea model for watching and steering a run. It is the
// session's scheduler: every TickMsg drains the run's queue and advances
// playback.
type Model struct {
	ctx       context.Context
	session   *session.Session
	params    experiment.Params
	canLaunch bool
	interval  time.Duration
	last      time.Time
	title     string
	log       *slog.Logger

	theme   Theme
	styles  styles
	help    help.Model
	spinner spinner.Model

	width, height int
	charts        bool
	simPaused     bool
	status        string
}

func NewModel(opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "firesim"
	}

	m := Model{
		ctx:       opts.Context,
		session:   opts.Session,
		params:    opts.Params,
		canLaunch: opts.CanLaunch,
		interval:  opts.Interval,
		title:     opts.Title,
		log:       opts.Logger,
		theme:     GetTheme(opts.Theme),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:     100,
		height:    30,
		charts:    true,
	}
	m.styles = newStyles(m.theme)

	if rec, err := opts.Session.ControlState(); err == nil {
		m.adopt(rec)
	}
	return m
}

// adopt takes the weather settings and pause flag from a control record.
func (m *Model) adopt(rec control.Record) {
	if rec.WindEnabled != nil {
		m.params.WindEnabled = *rec.WindEnabled
	}
	if rec.WindAngle != nil {
		m.params.WindAngle = *rec.WindAngle
	}
	if rec.WindStrength != nil {
		m.params.WindStrength = *rec.WindStrength
	}
	if rec.ThunderEnabled != nil {
		m.params.ThunderEnabled = *rec.ThunderEnabled
	}
	if rec.ThunderPercentage != nil {
		m.params.ThunderPercentage = *rec.ThunderPercentage
	}
	m.simPaused = rec.IsPaused()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Tick)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		var elapsed time.Duration
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last)
		}
		m.last = now
		res := m.session.Tick(elapsed)
		if res.BecameReady {
			m.status = ""
		}
		if res.Ended {
			if err := m.session.Err(); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("run finished after %d frames", m.session.Len())
			}
		}
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Pause):
		s.TogglePause()
	case key.Matches(msg, keys.Forward):
		s.StepForward()
	case key.Matches(msg, keys.Back):
		s.StepBack()
	case key.Matches(msg, keys.First):
		s.First()
	case key.Matches(msg, keys.Last):
		s.Last()
	case key.Matches(msg, keys.Faster):
		s.SetSpeed(s.Playback().Speed() / speedFactor)
	case key.Matches(msg, keys.Slower):
		s.SetSpeed(s.Playback().Speed() * speedFactor)
	case key.Matches(msg, keys.NewRun):
		m.newRun()
	case key.Matches(msg, keys.SimPause):
		if err := s.PauseSimulation(!m.simPaused); err != nil {
			m.fail("pause simulation", err)
		} else {
			m.simPaused = !m.simPaused
			m.status = ""
		}
	case key.Matches(msg, keys.SimStep):
		if err := s.StepSimulation(); err != nil {
			m.fail("step simulation", err)
		}
	case key.Matches(msg, keys.Wind):
		m.params.WindEnabled = !m.params.WindEnabled
		m.tune(control.Record{WindEnabled: control.Bool(m.params.WindEnabled)})
	case key.Matches(msg, keys.WindLeft):
		m.params.WindAngle = normalizeAngle(m.params.WindAngle - windAngleStep)
		m.tune(control.Record{WindAngle: control.Float(m.params.WindAngle)})
	case key.Matches(msg, keys.WindRight):
		m.params.WindAngle = normalizeAngle(m.params.WindAngle + windAngleStep)
		m.tune(control.Record{WindAngle: control.Float(m.params.WindAngle)})
	case key.Matches(msg, keys.WindWeaker):
		m.params.WindStrength = math.Max(m.params.WindStrength-windStep, 0)
		m.tune(control.Record{WindStrength: control.Float(m.params.WindStrength)})
	case key.Matches(msg, keys.WindStronger):
		m.params.WindStrength += windStep
		m.tune(control.Record{WindStrength: control.Float(m.params.WindStrength)})
	case key.Matches(msg, keys.Thunder):
		m.params.ThunderEnabled = !m.params.ThunderEnabled
		m.tune(control.Record{ThunderEnabled: control.Bool(m.params.ThunderEnabled)})
	case key.Matches(msg, keys.Charts):
		m.charts = !m.charts
	case key.Matches(msg, keys.Theme):
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) newRun() {
	if !m.canLaunch {
		m.status = "runs cannot be started from this view"
		return
	}
	if err := m.session.StartRun(m.ctx, m.params); err != nil {
		m.fail("start run", err)
		return
	}
	m.simPaused = false
	m.status = ""
}

// tune writes changed weather settings to the control file. The local value
// is kept even when the write fails so the next attempt carries it.
func (m *Model) tune(rec control.Record) {
	if _, err := m.session.UpdateTunables(rec); err != nil {
		m.fail("update control file", err)
		return
	}
	m.status = ""
}

func (m *Model) fail(action string, err error) {
	m.log.Warn("viz: "+action+" failed", "error", err)
	m.status = action + ": " + err.Error()
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func (m Model) View() string {
	st := m.styles
	s := m.session

	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")

	switch {
	case s.Ready():
		b.WriteString(m.runView())
	case s.Loading():
		fmt.Fprintf(&b, "%s Waiting for the simulation...\n\n", m.spinner.View())
		b.WriteString(ProgressBar(s.Progress()/100, 40, m.theme))
		fmt.Fprintf(&b, " %3.0f%%\n", s.Progress())
	case s.Err() != nil:
		b.WriteString(st.err.Render("ERROR: "+s.Err().Error()) + "\n")
	case m.canLaunch:
		b.WriteString(st.muted.Render("No run yet. Press n to start one.") + "\n")
	default:
		b.WriteString(st.muted.Render("Nothing to show yet.") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + st.paused.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

func (m Model) headerView() string {
	st := m.styles
	s := m.session
	p := s.Playback()

	state := st.playing.Render("PLAYING")
	switch {
	case !s.Ready() && s.Loading():
		state = st.muted.Render("LOADING")
	case p.Paused():
		state = st.paused.Render("PAUSED")
	}

	parts := []string{
		st.header.Render(strings.ToUpper(m.title)),
		state,
		st.value.Render(fmt.Sprintf("frame %d/%d", s.Current()+1, s.Len())),
		st.muted.Render(fmt.Sprintf("%.2fs/frame  end:%s", p.Speed(), p.Policy())),
	}
	if !s.Ready() {
		parts[2] = st.value.Render("frame -/-")
	}
	if s.Ended() {
		parts = append(parts, st.muted.Render("[stream ended]"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) runView() string {
	st := m.styles
	s := m.session

	frame, _ := s.CurrentFrame()
	maxH := m.height - 8
	if m.charts {
		maxH = m.height / 2
	}
	gridView := renderGrid(frame, st, m.width-panelWidth-4, maxH)

	counts, _ := s.Stats().At(s.Current())
	sum := s.Summary()

	var p strings.Builder
	p.WriteString(st.header.Render("CELLS") + "\n")
	p.WriteString(renderCounts(counts, st))
	p.WriteString("\n" + st.header.Render("FIRE") + "\n")
	p.WriteString(m.row("Burning now", fmt.Sprintf("%d", counts.Burning())))
	p.WriteString(m.row("Burned", fmt.Sprintf("%.1f%%", sum.BurnedPercent)))
	p.WriteString(m.row("Max burned", fmt.Sprintf("%.1f%%", sum.MaxBurnedPercent)))
	p.WriteString(m.row("Peak front", fmt.Sprintf("%d @ %d", sum.PeakFront, sum.PeakFrame+1)))
	p.WriteString(m.row("Trend", Sparkline(burningTrend(s.Stats(), s.Current()+1), 20)))
	p.WriteString("\n" + st.header.Render("WEATHER") + "\n")
	p.WriteString(m.row("Wind", onOff(m.params.WindEnabled)))
	p.WriteString(m.row("Wind angle", fmt.Sprintf("%.0f°", m.params.WindAngle)))
	p.WriteString(m.row("Wind strength", fmt.Sprintf("%.1f", m.params.WindStrength)))
	p.WriteString(m.row("Thunder", fmt.Sprintf("%s (%.1f%%)", onOff(m.params.ThunderEnabled), m.params.ThunderPercentage)))
	simState := "running"
	if m.simPaused {
		simState = "paused"
	}
	p.WriteString(m.row("Simulation", simState))

	main := lipgloss.JoinHorizontal(lipgloss.Top, gridView, st.panel.Width(panelWidth).Render(p.String()))
	if !m.charts {
		return main
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, renderCharts(s.Stats(), s.Current()+1, m.width-12, st))
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
