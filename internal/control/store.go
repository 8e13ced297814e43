package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store is the file-backed command channel to the external simulation.
//
// Writes are read-modify-write over the whole file. The mutex serializes
// writers inside this process only; another process writing the same file
// can still lose updates.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Read returns the persisted record. A missing file is an empty record.
func (s *Store) Read() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("%w: %v", ErrRead, err)
	}

	var rec Record
	if len(data) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return rec, nil
}

// Write merges update into the persisted record and writes the result back.
// The returned record is what was persisted.
func (s *Store) Write(update Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return Record{}, err
	}
	merged := current.Merge(update)

	if err := s.write(merged); err != nil {
		return Record{}, err
	}
	return merged, nil
}

// Reset replaces the persisted record with rec, discarding every field rec
// does not set. Used to seed a fresh run.
func (s *Store) Reset(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := Record{}.Merge(rec)
	if err := s.write(seeded); err != nil {
		return Record{}, err
	}
	return seeded, nil
}

func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
