package scorestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileRecord struct {
	BestScore int       `json:"best_score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File stores the score as a small JSON document
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store backed by path. The file is created on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file
func (f *File) Path() string {
	return f.path
}

// Load implements contracts.ScoreStore
func (f *File) Load(ctx context.Context) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *File) read() (int, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read score file: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("failed to decode score file %s: %w", f.path, err)
	}
	return rec.BestScore, true, nil
}

// Save implements contracts.ScoreStore. The file is re-read first so a
// higher score written by another process is never replaced; the write
// itself is atomic (temp file + rename).
func (f *File) Save(ctx context.Context, score int) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok, err := f.read()
	if err != nil {
		return 0, false, err
	}
	if ok && current >= score {
		return current, false, nil
	}

	if err := f.write(score); err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (f *File) write(score int) error {
	data, err := json.MarshalIndent(fileRecord{BestScore: score, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create score dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".best-score-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace score file: %w", err)
	}
	return nil
}
