// internal/results/memory.go
//
// In-memory implementation of the Store interface.
// Used for offline play and tests, or when durability is not required.
//
// Characteristics:
//   - Stores summaries keyed by puzzle id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package results

import (
	"context"
	"sort"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex    // guards results map
	results map[int]Summary // keyed by Summary.GameID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{results: make(map[int]Summary)}
}

func (m *memory) Has(ctx context.Context, gameID int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.results[gameID]
	return ok, nil
}

func (m *memory) Save(ctx context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.History = append([]AttemptRecord(nil), s.History...)
	m.results[s.GameID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, gameID int) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.results[gameID]; ok {
		return s, nil
	}
	return Summary{}, ErrNotFound
}

func (m *memory) List(ctx context.Context, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.results))
	for _, s := range m.results {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID > out[j].GameID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Delete(ctx context.Context, gameID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[gameID]; !ok {
		return ErrNotFound
	}
	delete(m.results, gameID)
	return nil
}
