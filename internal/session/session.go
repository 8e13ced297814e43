package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/metrics"
	"github.com/san-kum/firesim/internal/playback"
	"github.com/san-kum/firesim/internal/sim"
	"github.com/san-kum/firesim/internal/stream"
)

type Config struct {
	StreamFile   string
	Control      *control.Store
	Launcher     *experiment.Launcher
	PollInterval time.Duration
	Speed        float64
	EndPolicy    playback.EndPolicy
	Logger       *slog.Logger
}

// Session owns everything the playback loop reads and writes: the frame
// history, its stats, the playback controller and the active run. All
// methods must be called from one goroutine; only the run's tailer runs
// elsewhere and it talks to the session through the queue alone.
type Session struct {
	cfg Config
	log *slog.Logger

	queue *stream.Queue
	gen   uint64
	run   *experiment.Experiment

	sim      *sim.Simulation
	stats    *metrics.Stats
	burn     *metrics.Tracker
	playback *playback.Controller

	loading bool
	ready   bool
	ended   bool
	err     error
}

// TickResult describes what one Tick changed.
type TickResult struct {
	NewRun        bool
	Frames        int
	BecameReady   bool
	Ended         bool
	Move          playback.Move
	CursorChanged bool
}

func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:      cfg,
		log:      logger,
		queue:    stream.NewQueue(),
		burn:     metrics.NewTracker(),
		playback: playback.New(cfg.Speed, cfg.EndPolicy),
	}
}

// StartRun retires any active run and launches a new one. A failure leaves
// the session idle with the error available from Err.
func (s *Session) StartRun(ctx context.Context, p experiment.Params) error {
	gen := s.begin()
	run, err := experiment.Start(ctx, s.experimentConfig(), gen, p, s.queue)
	return s.started(run, err)
}

// Attach follows a stream written by a simulation started elsewhere.
func (s *Session) Attach(ctx context.Context) error {
	gen := s.begin()
	run, err := experiment.Attach(ctx, s.experimentConfig(), gen, s.queue)
	return s.started(run, err)
}

// LoadBatch replaces the session contents with a recorded run.
func (s *Session) LoadBatch(meta grid.Metadata, frames []grid.Frame) {
	gen := s.begin()
	s.apply(stream.Message{Kind: stream.KindMetadata, Gen: gen, Meta: meta}, &TickResult{})
	for i, f := range frames {
		s.apply(stream.Message{Kind: stream.KindFrame, Gen: gen, Frame: f, Seq: i + 1}, &TickResult{})
	}
	s.apply(stream.Message{Kind: stream.KindEnded, Gen: gen}, &TickResult{})
}

func (s *Session) begin() uint64 {
	s.retire()
	s.gen++
	s.sim = nil
	s.stats = nil
	s.burn.Reset()
	s.loading = false
	s.ready = false
	s.ended = false
	s.err = nil
	s.playback.Rearm()
	return s.gen
}

func (s *Session) started(run *experiment.Experiment, err error) error {
	if err != nil {
		s.err = err
		s.log.Error("session: run failed to start", "gen", s.gen, "error", err)
		return err
	}
	s.run = run
	s.loading = true
	return nil
}

func (s *Session) experimentConfig() experiment.Config {
	return experiment.Config{
		StreamFile:   s.cfg.StreamFile,
		Control:      s.cfg.Control,
		Launcher:     s.cfg.Launcher,
		PollInterval: s.cfg.PollInterval,
		Logger:       s.log,
	}
}

func (s *Session) retire() {
	if s.run == nil {
		return
	}
	s.run.Stop()
	s.log.Debug("session: run retired", "id", s.run.ID, "gen", s.run.Gen)
	s.run = nil
}

// Close stops the active run.
func (s *Session) Close() { s.retire() }

// Tick applies every queued message of the current run and then lets the
// playback controller move the cursor. It never blocks.
func (s *Session) Tick(elapsed time.Duration) TickResult {
	var res TickResult
	for _, m := range s.queue.Drain() {
		if m.Gen != s.gen {
			continue
		}
		s.apply(m, &res)
	}

	if s.sim != nil {
		before := s.sim.Current()
		res.Move = s.playback.Tick(s.sim, elapsed)
		res.CursorChanged = s.sim.Current() != before || res.NewRun
	}
	return res
}

// apply updates frames and stats together so they always have the same
// length.
func (s *Session) apply(m stream.Message, res *TickResult) {
	switch m.Kind {
	case stream.KindMetadata:
		s.sim = sim.New(m.Meta)
		s.stats = metrics.NewStats()
		s.burn.Reset()
		s.ready = false
		s.ended = false
		s.playback.Rearm()
		res.NewRun = true
		s.log.Info("session: new run", "gen", m.Gen, "width", m.Meta.Width, "height", m.Meta.Height)

	case stream.KindFrame:
		if s.sim == nil {
			s.log.Warn("session: frame before metadata dropped", "gen", m.Gen, "seq", m.Seq)
			return
		}
		s.sim.Append(m.Frame)
		s.burn.Observe(s.stats.Append(m.Frame))
		res.Frames++
		if !s.ready {
			s.ready = true
			s.loading = false
			res.BecameReady = true
		}

	case stream.KindEnded:
		s.ended = true
		s.loading = false
		res.Ended = true
		if !s.ready {
			s.err = ErrNoFrames
		}
		s.log.Info("session: stream ended", "gen", m.Gen, "frames", s.Len())
	}
}

// Gen identifies the current run.
func (s *Session) Gen() uint64 { return s.gen }

// Ready reports whether the current run has at least one frame.
func (s *Session) Ready() bool { return s.ready }

// Loading reports whether a run is started but has no frame yet.
func (s *Session) Loading() bool { return s.loading }

// Ended reports whether the current run's producer has finished.
func (s *Session) Ended() bool { return s.ended }

func (s *Session) Err() error { return s.err }

// Run is the active run, or nil.
func (s *Session) Run() *experiment.Experiment { return s.run }

// Progress is the simulation's own launch progress in [0, 100].
func (s *Session) Progress() float64 {
	if s.run == nil {
		return 0
	}
	return s.run.Progress()
}

func (s *Session) Len() int {
	if s.sim == nil {
		return 0
	}
	return s.sim.Len()
}

func (s *Session) Current() int {
	if s.sim == nil {
		return 0
	}
	return s.sim.Current()
}

func (s *Session) CurrentFrame() (grid.Frame, bool) {
	if s.sim == nil {
		return grid.Frame{}, false
	}
	return s.sim.CurrentFrame()
}

func (s *Session) Metadata() (grid.Metadata, bool) {
	if s.sim == nil {
		return grid.Metadata{}, false
	}
	return s.sim.Metadata(), true
}

// Simulation is the frame history of the current run, or nil before its
// metadata arrived.
func (s *Session) Simulation() *sim.Simulation { return s.sim }

// Stats is the category history of the current run. It is never nil.
func (s *Session) Stats() *metrics.Stats {
	if s.stats == nil {
		return metrics.NewStats()
	}
	return s.stats
}

// Summary is kept up to date as frames arrive.
func (s *Session) Summary() metrics.Summary { return s.burn.Summary() }

// Playback exposes the controller for requests the session does not wrap.
func (s *Session) Playback() *playback.Controller { return s.playback }

func (s *Session) TogglePause()             { s.playback.Toggle() }
func (s *Session) StepForward()             { s.playback.StepForward() }
func (s *Session) StepBack()                { s.playback.StepBack() }
func (s *Session) JumpTo(i int)             { s.playback.JumpTo(i) }
func (s *Session) First()                   { s.playback.First() }
func (s *Session) Last()                    { s.playback.Last() }
func (s *Session) SetSpeed(seconds float64) { s.playback.SetSpeed(seconds) }

// UpdateTunables writes rec through to the control file read by the
// running simulation.
func (s *Session) UpdateTunables(rec control.Record) (control.Record, error) {
	if s.cfg.Control == nil {
		return control.Record{}, ErrNoControl
	}
	return s.cfg.Control.Write(rec)
}

// PauseSimulation pauses or resumes the external simulation itself, as
// opposed to local playback.
func (s *Session) PauseSimulation(paused bool) error {
	_, err := s.UpdateTunables(control.Record{Paused: control.Bool(paused)})
	return err
}

// StepSimulation asks a paused simulation to compute one more step.
func (s *Session) StepSimulation() error {
	_, err := s.UpdateTunables(control.Record{Step: control.Bool(true)})
	return err
}

// ControlState reads back the control file.
func (s *Session) ControlState() (control.Record, error) {
	if s.cfg.Control == nil {
		return control.Record{}, ErrNoControl
	}
	return s.cfg.Control.Read()
}
