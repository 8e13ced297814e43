package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultPollInterval   = 50 * time.Millisecond
	DefaultResyncInterval = time.Second
)

// Config describes one tail of a stream file.
type Config struct {
	Path string
	Gen  uint64

	// PollInterval bounds how long the tailer sleeps while the file does
	// not exist yet. File events usually wake it sooner.
	PollInterval time.Duration

	// ResyncInterval forces a read even without a file event, for
	// filesystems that drop notifications. Zero uses the default; a
	// negative value disables it.
	ResyncInterval time.Duration

	Logger *slog.Logger
}

// Tailer follows a stream file as another process appends to it and sends
// decoded messages to a Sink. Only complete, newline-terminated lines are
// consumed; a partial trailing line is re-read once it is finished.
type Tailer struct {
	cfg     Config
	sink    Sink
	log     *slog.Logger
	watcher *fsnotify.Watcher
	errs    <-chan error

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type waitResult int

const (
	waitWake waitResult = iota
	waitCancelled
	waitClosed
)

// Start establishes the directory watch and begins tailing in a new
// goroutine. It fails with ErrWatch when the watch cannot be set up, in
// which case nothing is started.
func Start(ctx context.Context, cfg Config, sink Sink) (*Tailer, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ResyncInterval == 0 {
		cfg.ResyncInterval = DefaultResyncInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Path = filepath.Clean(cfg.Path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}
	if err := watcher.Add(filepath.Dir(cfg.Path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrWatch, filepath.Dir(cfg.Path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Tailer{
		cfg:     cfg,
		sink:    sink,
		log:     cfg.Logger.With("gen", cfg.Gen),
		watcher: watcher,
		errs:    watcher.Errors,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go t.run(ctx)
	return t, nil
}

// Stop abandons the tail immediately. No Ended message is sent and no
// message is sent after Stop returns.
func (t *Tailer) Stop() {
	t.cancel()
	<-t.done
}

// Finish reports that the producer has exited. The tailer reads whatever
// complete lines remain, sends Ended, and returns once it has done so.
func (t *Tailer) Finish() {
	t.closeWatcher()
	<-t.done
}

// Done is closed when the tailing goroutine has exited.
func (t *Tailer) Done() <-chan struct{} { return t.done }

func (t *Tailer) closeWatcher() {
	t.closeOnce.Do(func() {
		if err := t.watcher.Close(); err != nil {
			t.log.Debug("stream: closing watcher", "error", err)
		}
	})
}

func (t *Tailer) run(ctx context.Context) {
	defer close(t.done)
	defer t.closeWatcher()

	dec := &decoder{logger: t.log, path: t.cfg.Path}

	f, res := t.waitForFile(ctx)
	switch res {
	case waitCancelled:
		return
	case waitClosed:
		t.log.Info("stream: producer finished before stream file appeared", "path", t.cfg.Path)
		t.emit(Message{Kind: KindEnded})
		return
	}

	c := &cursor{file: f}
	defer func() { c.file.Close() }()
	t.log.Info("stream: tailing", "path", t.cfg.Path)

	for {
		if err := t.drain(ctx, c, dec); err != nil {
			t.log.Warn("stream: read failed, will retry", "path", t.cfg.Path, "error", err)
		}

		switch t.wait(ctx, c, dec) {
		case waitCancelled:
			return
		case waitClosed:
			if err := t.drain(ctx, c, dec); err != nil {
				t.log.Warn("stream: final read failed", "path", t.cfg.Path, "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			t.log.Info("stream: ended", "path", t.cfg.Path, "frames", dec.seq, "skipped", dec.skipped)
			t.emit(Message{Kind: KindEnded})
			return
		}
	}
}

func (t *Tailer) emit(m Message) {
	m.Gen = t.cfg.Gen
	t.sink.Send(m)
}

// waitForFile blocks until the stream file can be opened.
func (t *Tailer) waitForFile(ctx context.Context) (*os.File, waitResult) {
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		f, err := os.Open(t.cfg.Path)
		if err == nil {
			return f, waitWake
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.log.Warn("stream: cannot open stream file", "path", t.cfg.Path, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, waitCancelled
		case _, ok := <-t.watcher.Events:
			if !ok {
				// One last look: the producer may have written and exited
				// between polls.
				if f, err := os.Open(t.cfg.Path); err == nil {
					return f, waitWake
				}
				return nil, waitClosed
			}
		case err, ok := <-t.errs:
			if !ok {
				t.errs = nil
				continue
			}
			t.log.Warn("stream: watcher error", "error", err)
		case <-ticker.C:
		}
	}
}

// wait blocks until the stream file may have grown.
func (t *Tailer) wait(ctx context.Context, c *cursor, dec *decoder) waitResult {
	var resync <-chan time.Time
	if t.cfg.ResyncInterval > 0 {
		timer := time.NewTimer(t.cfg.ResyncInterval)
		defer timer.Stop()
		resync = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return waitCancelled
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return waitClosed
			}
			if filepath.Clean(ev.Name) != t.cfg.Path {
				continue
			}
			if ev.Has(fsnotify.Create) {
				t.reopenIfReplaced(c, dec)
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				return waitWake
			}
		case err, ok := <-t.errs:
			if !ok {
				t.errs = nil
				continue
			}
			t.log.Warn("stream: watcher error", "error", err)
		case <-resync:
			return waitWake
		}
	}
}

// reopenIfReplaced switches to a new file when the producer recreated the
// stream under the same name.
func (t *Tailer) reopenIfReplaced(c *cursor, dec *decoder) {
	cur, err := c.file.Stat()
	if err != nil {
		return
	}
	next, err := os.Stat(t.cfg.Path)
	if err != nil || os.SameFile(cur, next) {
		return
	}
	f, err := os.Open(t.cfg.Path)
	if err != nil {
		t.log.Warn("stream: cannot reopen replaced stream file", "path", t.cfg.Path, "error", err)
		return
	}
	t.log.Info("stream: stream file replaced, starting over", "path", t.cfg.Path)
	c.file.Close()
	c.file = f
	c.rewind()
	dec.reset()
}

type cursor struct {
	file   *os.File
	offset int64

	// first and last are consumed lines kept to notice the file being
	// rewritten in place.
	first, last mark
}

type mark struct {
	at   int64
	line []byte
}

func (c *cursor) consumed(line []byte) {
	m := mark{at: c.offset, line: line}
	if c.first.line == nil {
		c.first = m
	}
	c.last = m
	c.offset += int64(len(line))
}

func (c *cursor) rewind() {
	c.offset = 0
	c.first, c.last = mark{}, mark{}
}

// rewritten reports whether a consumed line no longer reads back the same,
// as when the file is truncated in place and refilled past the offset
// between two reads.
func (c *cursor) rewritten() bool {
	for _, m := range []mark{c.first, c.last} {
		if m.line == nil {
			continue
		}
		buf := make([]byte, len(m.line))
		n, err := c.file.ReadAt(buf, m.at)
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		if !bytes.Equal(buf[:n], m.line) {
			return true
		}
	}
	return false
}

// drain reads every complete line past the cursor. The cursor only moves
// over lines that ended in a newline.
func (t *Tailer) drain(ctx context.Context, c *cursor, dec *decoder) error {
	info, err := c.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < c.offset || c.rewritten() {
		t.log.Warn("stream: stream file truncated, starting over",
			"path", t.cfg.Path, "size", info.Size(), "offset", c.offset)
		c.rewind()
		dec.reset()
	}
	if info.Size() == c.offset {
		return nil
	}

	if _, err := c.file.Seek(c.offset, io.SeekStart); err != nil {
		return err
	}
	r := bufio.NewReader(c.file)
	for ctx.Err() == nil {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		c.consumed(line)
		if msg, ok := dec.decode(line); ok {
			t.emit(msg)
		}
	}
	return nil
}
