package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/stream"
)

// Config locates a run's files and how to start the simulation.
type Config struct {
	StreamFile   string
	Control      *control.Store
	Launcher     *Launcher
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Experiment is one active run: a stream tail plus, unless attached to a
// simulation started elsewhere, the process writing that stream.
type Experiment struct {
	ID      string
	Gen     uint64
	Params  Params
	Started time.Time

	tailer   *stream.Tailer
	proc     *Process
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins a fresh run. The old stream file is removed, the control
// file is reset from p, the tail is armed and only then is the process
// launched, so no line it writes can be missed. On error nothing is left
// running.
func Start(ctx context.Context, cfg Config, gen uint64, p Params, sink stream.Sink) (*Experiment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	logger := loggerOf(cfg)

	if err := os.Remove(cfg.StreamFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: removing old stream: %v", ErrPrepare, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.StreamFile), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrepare, err)
	}
	if cfg.Control != nil {
		if _, err := cfg.Control.Reset(p.ControlRecord()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPrepare, err)
		}
	}

	e := newExperiment(gen, p)
	tailer, err := stream.Start(ctx, streamConfig(cfg, gen, logger), sink)
	if err != nil {
		return nil, err
	}
	e.tailer = tailer

	launcher := cfg.Launcher
	if launcher == nil {
		launcher = NewLauncher()
	}
	if launcher.Logger == nil {
		launcher.Logger = logger
	}
	proc, err := launcher.Launch(ctx, p)
	if err != nil {
		tailer.Stop()
		return nil, err
	}
	e.proc = proc

	go func() {
		defer close(e.done)
		<-proc.Done()
		tailer.Finish()
	}()

	logger.Info("experiment: run started", "id", e.ID, "gen", gen, "pid", proc.PID())
	return e, nil
}

// Attach tails a stream written by a simulation this process did not
// start. The stream file is left in place.
func Attach(ctx context.Context, cfg Config, gen uint64, sink stream.Sink) (*Experiment, error) {
	logger := loggerOf(cfg)

	e := newExperiment(gen, Params{})
	tailer, err := stream.Start(ctx, streamConfig(cfg, gen, logger), sink)
	if err != nil {
		return nil, err
	}
	e.tailer = tailer

	go func() {
		defer close(e.done)
		<-tailer.Done()
	}()

	logger.Info("experiment: attached", "id", e.ID, "gen", gen, "path", cfg.StreamFile)
	return e, nil
}

func newExperiment(gen uint64, p Params) *Experiment {
	return &Experiment{
		ID:      uuid.NewString(),
		Gen:     gen,
		Params:  p,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
}

func streamConfig(cfg Config, gen uint64, logger *slog.Logger) stream.Config {
	return stream.Config{
		Path:         cfg.StreamFile,
		Gen:          gen,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	}
}

func loggerOf(cfg Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// Attached reports whether the run has no process of its own.
func (e *Experiment) Attached() bool { return e.proc == nil }

// Progress is the launch progress reported by the simulation, or 0.
func (e *Experiment) Progress() float64 {
	if e.proc == nil {
		return 0
	}
	return e.proc.Progress()
}

// Done is closed once the run has finished: the process exited and the
// stream was read to the end, or the run was stopped.
func (e *Experiment) Done() <-chan struct{} { return e.done }

// Stop retires the run. The tail is stopped first so nothing more is
// sent, then the process is interrupted.
func (e *Experiment) Stop() {
	e.stopOnce.Do(func() {
		e.tailer.Stop()
		if e.proc != nil {
			e.proc.Stop()
		}
	})
	<-e.done
}
