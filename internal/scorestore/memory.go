// Package scorestore persists the single best quiz score. Backends: a JSON
// file (default), Redis, or PostgreSQL; Memory is used by tests and as the
// CLI fallback.
package scorestore

import (
	"context"
	"sync"
)

// Memory keeps the score in process memory only
type Memory struct {
	mu    sync.Mutex
	score int
	ok    bool
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements contracts.ScoreStore
func (m *Memory) Load(ctx context.Context) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score, m.ok, nil
}

// Save implements contracts.ScoreStore
func (m *Memory) Save(ctx context.Context, score int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ok && m.score >= score {
		return m.score, false, nil
	}
	m.score, m.ok = score, true
	return score, true, nil
}
