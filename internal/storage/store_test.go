package storage

import (
	"errors"
	"testing"

	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/metrics"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	stats := metrics.NewStats()
	stats.Append(grid.NewFrame([][]string{{"T", "G"}, {"*", "W"}}))
	stats.Append(grid.NewFrame([][]string{{"A", "+"}, {"A", "W"}}))

	params := experiment.DefaultParams()
	params.WindStrength = 7

	runID, err := st.Save(Run{
		Source: "run",
		Params: params,
		Meta:   grid.Metadata{Width: 2, Height: 2},
		Stats:  stats,
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a generated run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Params.WindStrength != 7 {
		t.Errorf("expected wind strength 7, got %v", meta.Params.WindStrength)
	}
	if meta.Frames != 2 || meta.Width != 2 {
		t.Errorf("unexpected shape or length: %+v", meta)
	}
	if meta.Metrics["peak_fire_front"] != 1 {
		t.Errorf("expected peak fire front 1, got %v", meta.Metrics["peak_fire_front"])
	}

	loaded, err := st.LoadStats(runID)
	if err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", loaded.Len())
	}
	for i := 0; i < 2; i++ {
		want, _ := stats.At(i)
		got, _ := loaded.At(i)
		if got != want {
			t.Errorf("row %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	for _, id := range []string{"first", "second"} {
		if _, err := st.Save(Run{ID: id, Stats: metrics.NewStats()}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadStats("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
