package stream

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Read", func() {
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))

	It("decodes a finished stream including an unterminated last line", func() {
		data := `{"width":2,"height":1}` + "\n" +
			`[["T","G"]]` + "\n" +
			`[["*","+"]]`

		rec, err := Read(strings.NewReader(data), logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Meta.Width).To(Equal(2))
		Expect(rec.Meta.Height).To(Equal(1))
		Expect(rec.Frames).To(HaveLen(2))
		Expect(rec.Frames[1].Cell(0, 0)).To(Equal("*"))
	})

	It("skips malformed frames and counts them", func() {
		data := "\n" + `{"width":1,"height":1}` + "\n" +
			`[["T"]]` + "\n" +
			`[["T","T"]]` + "\n" +
			"garbage\n" +
			`{"cells":[["A"]]}` + "\n"

		rec, err := Read(strings.NewReader(data), logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Frames).To(HaveLen(2))
		Expect(rec.Skipped).To(Equal(2))
		Expect(rec.Frames[1].Cell(0, 0)).To(Equal("A"))
	})

	It("fails without a metadata header", func() {
		_, err := Read(strings.NewReader("\n\nnope\n"), logger)
		Expect(err).To(MatchError(ErrNoMetadata))
	})

	It("reads from a file path", func() {
		path := filepath.Join(GinkgoT().TempDir(), "simulation_stream.ndjson")
		Expect(os.WriteFile(path, []byte(`{"width":1,"height":1}`+"\n"+`[["W"]]`+"\n"), 0644)).To(Succeed())

		rec, err := ReadFile(path, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Frames).To(HaveLen(1))
	})
})
