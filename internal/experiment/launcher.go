package experiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultCommand       = "sh"
	DefaultScript        = "run-sim.sh"
	DefaultShutdownGrace = 3 * time.Second

	progressPrefix = "PROGRESS:"
)

// Launcher starts the external simulation process.
type Launcher struct {
	// Command is the executable; Script, when set, is its first argument
	// and the run parameters follow.
	Command string
	Script  string
	Workdir string
	// Grace is how long a stopped process gets between the interrupt and
	// the kill.
	Grace  time.Duration
	Logger *slog.Logger
}

func NewLauncher() *Launcher {
	return &Launcher{
		Command: DefaultCommand,
		Script:  DefaultScript,
		Grace:   DefaultShutdownGrace,
	}
}

// Process is a running simulation.
type Process struct {
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	progress atomic.Uint64
}

// Launch starts the process with p's arguments. Cancelling ctx or calling
// Stop interrupts it.
func (l *Launcher) Launch(ctx context.Context, p Params) (*Process, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	command := l.Command
	if command == "" {
		command = DefaultCommand
	}
	var args []string
	if l.Script != "" {
		args = append(args, l.Script)
	}
	args = append(args, p.Args()...)

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = l.Workdir
	cmd.WaitDelay = l.Grace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultShutdownGrace
	}
	interruptOnCancel(cmd)

	proc := &Process{cmd: cmd, cancel: cancel, done: make(chan struct{})}
	stdout := &lineWriter{fn: func(line string) {
		if v, ok := parseProgress(line); ok {
			proc.progress.Store(math.Float64bits(v))
			return
		}
		logger.Debug("experiment: simulation output", "line", line)
	}}
	stderr := &lineWriter{fn: func(line string) {
		logger.Debug("experiment: simulation stderr", "line", line)
	}}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunch, command, err)
	}
	logger.Info("experiment: simulation started", "pid", cmd.Process.Pid, "command", command, "args", args)

	go func() {
		defer close(proc.done)
		defer cancel()
		proc.err = cmd.Wait()
		stdout.flush()
		stderr.flush()

		var exitErr *exec.ExitError
		switch {
		case proc.err == nil:
			logger.Info("experiment: simulation exited", "pid", cmd.Process.Pid)
		case ctx.Err() != nil:
			logger.Info("experiment: simulation stopped", "pid", cmd.Process.Pid)
		case errors.As(proc.err, &exitErr):
			logger.Warn("experiment: simulation failed", "pid", cmd.Process.Pid, "exit_code", exitErr.ExitCode())
		default:
			logger.Warn("experiment: simulation wait failed", "pid", cmd.Process.Pid, "error", proc.err)
		}
	}()
	return proc, nil
}

// Done is closed once the process has exited and its output is consumed.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err is the exit error. It is only meaningful after Done is closed.
func (p *Process) Err() error { return p.err }

func (p *Process) PID() int { return p.cmd.Process.Pid }

// Progress is the last PROGRESS value printed by the process, in [0, 100].
func (p *Process) Progress() float64 {
	return math.Float64frombits(p.progress.Load())
}

// Stop interrupts the process and waits for it to exit. It is killed if
// it outlives the launcher's grace period.
func (p *Process) Stop() {
	p.cancel()
	<-p.done
}

func parseProgress(line string) (float64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), progressPrefix)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return math.Min(math.Max(v, 0), 100), true
}

// lineWriter hands complete output lines to fn.
type lineWriter struct {
	mu  sync.Mutex
	buf []byte
	fn  func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.fn(strings.TrimRight(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.fn(string(w.buf))
		w.buf = nil
	}
}
