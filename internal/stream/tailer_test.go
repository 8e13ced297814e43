package stream

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type collector struct {
	q   *Queue
	got []Message
}

func (c *collector) all() []Message {
	c.got = append(c.got, c.q.Drain()...)
	return c.got
}

func (c *collector) frames() []Message {
	var out []Message
	for _, m := range c.all() {
		if m.Kind == KindFrame {
			out = append(out, m)
		}
	}
	return out
}

func (c *collector) kinds() []Kind {
	var out []Kind
	for _, m := range c.all() {
		out = append(out, m.Kind)
	}
	return out
}

func frameLine(code string) string {
	return fmt.Sprintf(`[[%q]]`, code) + "\n"
}

const header = `{"width":1,"height":1}` + "\n"

var _ = Describe("Tailer", func() {
	var (
		dir    string
		path   string
		col    *collector
		cfg    Config
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "simulation_stream.ndjson")
		col = &collector{q: NewQueue()}
		cfg = Config{
			Path:         path,
			Gen:          1,
			PollInterval: 10 * time.Millisecond,
			Logger:       slog.New(slog.NewTextHandler(GinkgoWriter, nil)),
		}
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
	})

	start := func() *Tailer {
		t, err := Start(ctx, cfg, col.q)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(t.Stop)
		return t
	}

	appendTo := func(f *os.File, s string) {
		_, err := f.WriteString(s)
		Expect(err).NotTo(HaveOccurred())
	}

	It("reads a stream that already exists", func() {
		Expect(os.WriteFile(path, []byte(header+frameLine("T")+frameLine("G")+frameLine("A")), 0644)).To(Succeed())

		start()

		Eventually(col.frames).Should(HaveLen(3))
		Expect(col.all()[0].Kind).To(Equal(KindMetadata))
		Expect(col.all()[0].Meta.Cells()).To(Equal(1))
		for i, m := range col.frames() {
			Expect(m.Seq).To(Equal(i + 1))
			Expect(m.Gen).To(Equal(uint64(1)))
		}
	})

	It("waits for the stream file to appear", func() {
		start()
		Consistently(col.all, 100*time.Millisecond).Should(BeEmpty())

		Expect(os.WriteFile(path, []byte(header+frameLine("T")), 0644)).To(Succeed())

		Eventually(col.kinds).Should(Equal([]Kind{KindMetadata, KindFrame}))
	})

	It("delivers every frame exactly once across split writes", func() {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		start()
		appendTo(f, header)

		const n = 30
		for i := 0; i < n; i++ {
			line := frameLine(strconv.Itoa(i))
			half := len(line) / 2
			appendTo(f, line[:half])
			time.Sleep(2 * time.Millisecond)
			appendTo(f, line[half:])
		}

		Eventually(col.frames, 3*time.Second).Should(HaveLen(n))
		Consistently(col.frames, 100*time.Millisecond).Should(HaveLen(n))
		for i, m := range col.frames() {
			Expect(m.Seq).To(Equal(i + 1))
			Expect(m.Frame.Cell(0, 0)).To(Equal(strconv.Itoa(i)))
		}
	})

	It("retries the header until a line parses as metadata", func() {
		data := "\n   \n" + "not json\n" + `{"width":0,"height":1}` + "\n" + header + frameLine("G")
		Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

		start()

		Eventually(col.kinds).Should(Equal([]Kind{KindMetadata, KindFrame}))
	})

	It("skips malformed frames without stopping", func() {
		data := header + frameLine("T") + "{broken\n" + `[["T","T"]]` + "\n" + frameLine("A")
		Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

		start()

		Eventually(col.frames).Should(HaveLen(2))
		Expect(col.frames()[1].Frame.Cell(0, 0)).To(Equal("A"))
		Expect(col.frames()[1].Seq).To(Equal(2))
	})

	It("sends Ended after reading the remaining lines on Finish", func() {
		Expect(os.WriteFile(path, []byte(header+frameLine("T")+frameLine("T")+`[["T"`), 0644)).To(Succeed())

		t := start()
		t.Finish()

		Expect(col.kinds()).To(Equal([]Kind{KindMetadata, KindFrame, KindFrame, KindEnded}))
		Eventually(t.Done()).Should(BeClosed())
	})

	It("sends Ended when the producer exits before writing anything", func() {
		t := start()
		t.Finish()

		Expect(col.kinds()).To(Equal([]Kind{KindEnded}))
	})

	It("sends nothing further once stopped", func() {
		t := start()
		t.Stop()
		Expect(t.Done()).To(BeClosed())

		Expect(os.WriteFile(path, []byte(header+frameLine("T")), 0644)).To(Succeed())
		Consistently(col.all, 100*time.Millisecond).Should(BeEmpty())
	})

	It("stops when its context is cancelled", func() {
		t := start()
		cancel()
		Eventually(t.Done()).Should(BeClosed())
		Expect(col.all()).To(BeEmpty())
	})

	It("starts over when the file is rewritten in place past the old offset", func() {
		Expect(os.WriteFile(path, []byte(header+frameLine("T")+frameLine("T")+frameLine("T")), 0644)).To(Succeed())
		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		t := &Tailer{cfg: cfg, sink: col.q, log: cfg.Logger}
		c := &cursor{file: f}
		dec := &decoder{logger: cfg.Logger, path: path}
		Expect(t.drain(ctx, c, dec)).To(Succeed())
		Expect(col.kinds()).To(Equal([]Kind{KindMetadata, KindFrame, KindFrame, KindFrame}))
		old := c.offset

		wider := `{"width":2,"height":1}` + "\n"
		for i := 0; i < 5; i++ {
			wider += `[["G","G"]]` + "\n"
		}
		Expect(int64(len(wider))).To(BeNumerically(">", old))
		Expect(os.WriteFile(path, []byte(wider), 0644)).To(Succeed())

		Expect(t.drain(ctx, c, dec)).To(Succeed())
		got := col.all()[4:]
		Expect(got).To(HaveLen(6))
		Expect(got[0].Kind).To(Equal(KindMetadata))
		Expect(got[0].Meta.Width).To(Equal(2))
		for i, m := range got[1:] {
			Expect(m.Kind).To(Equal(KindFrame))
			Expect(m.Seq).To(Equal(i + 1))
			Expect(m.Frame.Row(0)).To(Equal([]string{"G", "G"}))
		}
		Expect(c.offset).To(Equal(int64(len(wider))))
	})

	It("follows a stream truncated and refilled while tailing", func() {
		Expect(os.WriteFile(path, []byte(header+frameLine("T")+frameLine("T")), 0644)).To(Succeed())

		start()
		Eventually(col.frames).Should(HaveLen(2))

		wider := `{"width":2,"height":1}` + "\n"
		for i := 0; i < 5; i++ {
			wider += `[["G","G"]]` + "\n"
		}
		Expect(os.WriteFile(path, []byte(wider), 0644)).To(Succeed())

		Eventually(func() int {
			n := 0
			for _, m := range col.all() {
				if m.Kind == KindMetadata {
					n++
				}
			}
			return n
		}).Should(Equal(2))
		Eventually(col.frames).Should(HaveLen(7))
		last := col.frames()[6]
		Expect(last.Seq).To(Equal(5))
		Expect(last.Frame.Width()).To(Equal(2))
	})

	It("fails to start when the directory cannot be watched", func() {
		cfg.Path = filepath.Join(dir, "missing", "simulation_stream.ndjson")

		t, err := Start(ctx, cfg, col.q)
		Expect(err).To(MatchError(ErrWatch))
		Expect(t).To(BeNil())
	})
})
