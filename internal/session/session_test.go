package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/playback"
	"github.com/san-kum/firesim/internal/stream"
)

func rows(codes ...string) grid.Frame {
	out := make([][]string, len(codes))
	for i, c := range codes {
		out[i] = make([]string, len(c))
		for j, r := range c {
			out[i][j] = string(r)
		}
	}
	return grid.NewFrame(out)
}

var _ = Describe("Session", func() {
	var (
		s      *Session
		dir    string
		logger *slog.Logger
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		s = New(Config{
			StreamFile:   filepath.Join(dir, "res", "simulation_stream.ndjson"),
			Control:      control.NewStore(filepath.Join(dir, "res", "sim_control.json")),
			PollInterval: 10 * time.Millisecond,
			Speed:        0.1,
			EndPolicy:    playback.EndPause,
			Logger:       logger,
		})
		DeferCleanup(s.Close)
	})

	send := func(msgs ...stream.Message) {
		for _, m := range msgs {
			s.queue.Send(m)
		}
	}
	meta := func(gen uint64, w, h int) stream.Message {
		return stream.Message{Kind: stream.KindMetadata, Gen: gen, Meta: grid.Metadata{Width: w, Height: h}}
	}
	frame := func(gen uint64, f grid.Frame) stream.Message {
		return stream.Message{Kind: stream.KindFrame, Gen: gen, Frame: f}
	}

	Describe("applying messages", func() {
		BeforeEach(func() {
			s.gen = 1
		})

		It("keeps stats in lockstep with frames", func() {
			send(meta(1, 3, 2))
			for i := 0; i < 3; i++ {
				send(frame(1, rows("TTT", "GGG")))
			}

			res := s.Tick(0)

			Expect(res.NewRun).To(BeTrue())
			Expect(res.Frames).To(Equal(3))
			Expect(res.BecameReady).To(BeTrue())
			Expect(s.Len()).To(Equal(3))
			Expect(s.Stats().Len()).To(Equal(3))
			Expect(s.Stats().Series(grid.Trees, s.Len())).To(Equal([]float64{3, 3, 3}))
			Expect(s.Stats().Series(grid.Grasses, s.Len())).To(Equal([]float64{3, 3, 3}))
		})

		It("holds playback paused at frame 0 after metadata", func() {
			send(meta(1, 1, 1))
			res := s.Tick(time.Second)
			Expect(res.Move).To(Equal(playback.MoveNone))
			Expect(s.Playback().Paused()).To(BeTrue())
			Expect(s.Playback().Pending()).To(BeTrue())
			Expect(s.Ready()).To(BeFalse())

			send(frame(1, rows("T")), frame(1, rows("*")))
			res = s.Tick(time.Second)
			Expect(res.Move).To(Equal(playback.MoveJump))
			Expect(s.Current()).To(Equal(0))
			Expect(s.Ready()).To(BeTrue())
		})

		It("clamps a jump past the last frame", func() {
			send(meta(1, 1, 1))
			for i := 0; i < 5; i++ {
				send(frame(1, rows("T")))
			}
			s.Tick(0)

			s.JumpTo(9999)
			res := s.Tick(0)
			Expect(res.CursorChanged).To(BeTrue())
			Expect(s.Current()).To(Equal(4))
		})

		It("auto-advances once playing", func() {
			send(meta(1, 1, 1), frame(1, rows("T")), frame(1, rows("*")), frame(1, rows("A")))
			s.Tick(0)

			s.TogglePause()
			s.Tick(100 * time.Millisecond)
			s.Tick(100 * time.Millisecond)
			Expect(s.Current()).To(Equal(2))

			s.Tick(100 * time.Millisecond)
			Expect(s.Current()).To(Equal(2))
			Expect(s.Playback().Paused()).To(BeTrue())
		})

		It("drops messages from a replaced run", func() {
			send(meta(1, 1, 1), frame(1, rows("T")))
			s.Tick(0)

			s.gen = 2
			send(frame(1, rows("*")), meta(2, 2, 1), frame(1, rows("A")), frame(2, rows("GG")))
			s.Tick(0)

			m, ok := s.Metadata()
			Expect(ok).To(BeTrue())
			Expect(m.Width).To(Equal(2))
			Expect(s.Len()).To(Equal(1))
			f, _ := s.CurrentFrame()
			Expect(f.Cell(1, 0)).To(Equal("G"))
			Expect(s.Stats().Len()).To(Equal(1))
		})

		It("discards the previous run's history on new metadata", func() {
			send(meta(1, 1, 1), frame(1, rows("T")), frame(1, rows("T")))
			s.Tick(0)
			Expect(s.Len()).To(Equal(2))

			send(meta(1, 1, 1))
			s.Tick(0)
			Expect(s.Len()).To(Equal(0))
			Expect(s.Stats().Len()).To(Equal(0))
			Expect(s.Ready()).To(BeFalse())
		})

		It("reports a run that ended without frames", func() {
			s.loading = true
			send(meta(1, 1, 1), stream.Message{Kind: stream.KindEnded, Gen: 1})
			res := s.Tick(0)

			Expect(res.Ended).To(BeTrue())
			Expect(s.Loading()).To(BeFalse())
			Expect(s.Err()).To(MatchError(ErrNoFrames))
		})
	})

	It("replays a batch", func() {
		s.LoadBatch(grid.Metadata{Width: 2, Height: 1}, []grid.Frame{rows("T+"), rows("A-")})
		s.Tick(0)

		Expect(s.Ready()).To(BeTrue())
		Expect(s.Ended()).To(BeTrue())
		Expect(s.Len()).To(Equal(2))
		Expect(s.Summary().BurnedPercent).To(Equal(100.0))
	})

	It("follows a stream file written by another process", func() {
		path := filepath.Join(dir, "res", "simulation_stream.ndjson")
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(s.Attach(context.Background())).To(Succeed())
		Expect(s.Loading()).To(BeTrue())

		f, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		_, err = f.WriteString(`{"width":1,"height":1}` + "\n" + `[["T"]]` + "\n")
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int {
			s.Tick(0)
			return s.Len()
		}, 3*time.Second).Should(Equal(1))
		Expect(s.Loading()).To(BeFalse())

		_, err = f.WriteString(`[["*"]]` + "\n")
		Expect(err).NotTo(HaveOccurred())
		Eventually(func() int {
			s.Tick(0)
			return s.Len()
		}, 3*time.Second).Should(Equal(2))
		Expect(s.Stats().Series(grid.BurningTrees, 2)).To(Equal([]float64{0, 1}))
	})

	It("keeps a second run free of the first run's frames", func() {
		if runtime.GOOS == "windows" {
			Skip("needs a POSIX shell")
		}
		script := filepath.Join(dir, "run-sim.sh")
		Expect(os.WriteFile(script, []byte(`#!/bin/sh
out=res/simulation_stream.ndjson
printf '{"width":%s,"height":%s}\n' "$1" "$2" >> "$out"
printf '[["T"]]\n' >> "$out"
sleep 0.2
printf '[["*"]]\n' >> "$out"
`), 0755)).To(Succeed())
		s.cfg.Launcher = &experiment.Launcher{Command: "sh", Script: script, Workdir: dir, Grace: time.Second}

		first := experiment.DefaultParams()
		first.Width, first.Height = 1, 1
		Expect(s.StartRun(context.Background(), first)).To(Succeed())
		Eventually(func() bool { s.Tick(0); return s.Ended() }, 5*time.Second).Should(BeTrue())
		Expect(s.Len()).To(Equal(2))

		second := first
		second.WindStrength = 20
		Expect(s.StartRun(context.Background(), second)).To(Succeed())
		Expect(s.Len()).To(Equal(0))
		Expect(s.Gen()).To(Equal(uint64(2)))

		Eventually(func() bool { s.Tick(0); return s.Ended() }, 5*time.Second).Should(BeTrue())
		Expect(s.Len()).To(Equal(2))
		Expect(s.Stats().Len()).To(Equal(2))

		rec, err := s.ControlState()
		Expect(err).NotTo(HaveOccurred())
		Expect(*rec.WindStrength).To(Equal(20.0))
	})

	It("drops a still-writing run's queued frames when a new run starts", func() {
		if runtime.GOOS == "windows" {
			Skip("needs a POSIX shell")
		}
		script := filepath.Join(dir, "run-sim.sh")
		Expect(os.WriteFile(script, []byte(`#!/bin/sh
out=res/simulation_stream.ndjson
printf '{"width":%s,"height":%s}\n' "$1" "$2" >> "$out"
if [ "$1" = 1 ]; then
	i=0
	while [ $i -lt 500 ]; do
		printf '[["T"]]\n' >> "$out"
		sleep 0.01
		i=$((i+1))
	done
else
	i=0
	while [ $i -lt 20 ]; do
		printf '[["G","G"]]\n' >> "$out"
		i=$((i+1))
	done
fi
`), 0755)).To(Succeed())
		s.cfg.Launcher = &experiment.Launcher{Command: "sh", Script: script, Workdir: dir, Grace: time.Second}

		trees := experiment.DefaultParams()
		trees.Width, trees.Height = 1, 1
		Expect(s.StartRun(context.Background(), trees)).To(Succeed())
		Eventually(func() int { s.Tick(0); return s.Len() }, 5*time.Second).Should(BeNumerically(">=", 5))
		// Let more tree frames pile up in the queue without draining them.
		time.Sleep(50 * time.Millisecond)
		Expect(s.Ended()).To(BeFalse())

		prev := s.Run()
		grass := experiment.DefaultParams()
		grass.Width, grass.Height = 2, 1
		Expect(s.StartRun(context.Background(), grass)).To(Succeed())
		Expect(prev.Done()).To(BeClosed())

		Eventually(func() bool { s.Tick(0); return s.Ended() }, 5*time.Second).Should(BeTrue())
		Expect(s.Err()).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(20))
		Expect(s.Stats().Len()).To(Equal(20))

		meta, ok := s.Metadata()
		Expect(ok).To(BeTrue())
		Expect(meta.Width).To(Equal(2))
		for _, f := range s.Simulation().Frames() {
			Expect(f.Rows()).To(Equal([][]string{{"G", "G"}}))
		}
		for _, c := range s.Stats().Rows() {
			Expect(c[grid.Trees]).To(BeZero())
			Expect(c[grid.Grasses]).To(Equal(int64(2)))
		}
		Expect(s.Summary().Frames).To(Equal(20))
	})

	It("surfaces a launch failure and stays idle", func() {
		s.cfg.Launcher = &experiment.Launcher{Command: filepath.Join(dir, "missing-simulator")}

		err := s.StartRun(context.Background(), experiment.DefaultParams())
		Expect(err).To(MatchError(experiment.ErrLaunch))
		Expect(s.Loading()).To(BeFalse())
		Expect(s.Err()).To(MatchError(experiment.ErrLaunch))
	})

	It("writes tunables through to the control file", func() {
		_, err := s.UpdateTunables(control.Record{WindAngle: control.Float(45)})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.PauseSimulation(true)).To(Succeed())

		rec, err := s.ControlState()
		Expect(err).NotTo(HaveOccurred())
		Expect(*rec.WindAngle).To(Equal(45.0))
		Expect(rec.IsPaused()).To(BeTrue())
		Expect(rec.StepRequested()).To(BeFalse())

		Expect(s.StepSimulation()).To(Succeed())
		rec, _ = s.ControlState()
		Expect(rec.StepRequested()).To(BeTrue())
	})
})
