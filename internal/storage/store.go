package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

var ErrNotFound = errors.New("storage: run not found")

// Store archives finished runs, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Params    experiment.Params  `json:"params"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Frames    int                `json:"frames"`
	Summary   metrics.Summary    `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is what gets archived.
type Run struct {
	// ID is generated when empty.
	ID     string
	Source string
	Params experiment.Params
	Meta   grid.Metadata
	Stats  *metrics.Stats
}

// Save writes metadata.json and stats.csv for r and returns its id.
func (s *Store) Save(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Stats == nil {
		r.Stats = metrics.NewStats()
	}
	runDir := filepath.Join(s.baseDir, r.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	tracked := metrics.Track(r.Stats)
	meta := RunMetadata{
		ID:        r.ID,
		Source:    r.Source,
		Timestamp: time.Now(),
		Params:    r.Params,
		Width:     r.Meta.Width,
		Height:    r.Meta.Height,
		Frames:    r.Stats.Len(),
		Summary:   tracked.Summary(),
		Metrics:   tracked.Values(),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), r.Stats); err != nil {
		return "", err
	}
	return r.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStats(path string, stats *metrics.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"frame"}
	for _, c := range grid.Categories() {
		header = append(header, c.String())
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, counts := range stats.Rows() {
		row := []string{strconv.Itoa(i)}
		for _, c := range grid.Categories() {
			row = append(row, strconv.FormatInt(counts[c], 10))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every archived run, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStats reads a run's category history back. Columns are matched by
// name, so archives written with fewer categories still load.
func (s *Store) LoadStats(runID string) (*metrics.Stats, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	stats := metrics.NewStats()
	if len(records) < 2 {
		return stats, nil
	}

	columns := make(map[int]grid.Category)
	for i, name := range records[0] {
		if c, ok := grid.ParseCategory(name); ok {
			columns[i] = c
		}
	}

	for _, record := range records[1:] {
		var counts grid.Counts
		for i, field := range record {
			c, ok := columns[i]
			if !ok {
				continue
			}
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				continue
			}
			counts[c] = v
		}
		stats.AppendCounts(counts)
	}
	return stats, nil
}
