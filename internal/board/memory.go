// internal/board/memory.go
//
// In-memory board holding the true groups of a puzzle.
// Used for offline play and tests; judges a group the same way the site
// does:
//   - all four words from one true group  → SUCCESS (group leaves the board)
//   - three of the four from one group    → ONE_AWAY
//   - anything else                       → FAILURE
//
// Concurrency-safe via Mutex, like the other in-memory stores.

package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/puzzle"
)

// Memory is a Board backed by a known solution.
type Memory struct {
	mu       sync.Mutex
	groups   []game.WordSet // unsolved true groups
	solved   []game.WordSet // in the order they were found
	shuffles int            // number of Shuffle calls
}

// NewMemory builds a board for the given puzzle.
func NewMemory(p puzzle.Puzzle) *Memory {
	m := &Memory{}
	for _, g := range p.Groups {
		m.groups = append(m.groups, g.WordSet())
	}
	return m
}

// RemainingWords implements Board.
func (m *Memory) RemainingWords(ctx context.Context) (game.WordSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := game.NewWordSet()
	for _, g := range m.groups {
		for w := range g {
			out[w] = struct{}{}
		}
	}
	return out, nil
}

// AttemptGroup implements Board.
func (m *Memory) AttemptGroup(ctx context.Context, words game.WordSet) (game.Outcome, error) {
	if words.Len() != game.GroupSize {
		return 0, fmt.Errorf("%w: got %d", ErrGroupSize, words.Len())
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	best, bestIdx := 0, -1
	for w := range words {
		found := false
		for _, g := range m.groups {
			if g.Contains(w) {
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %s", ErrUnknownWord, w)
		}
	}
	for i, g := range m.groups {
		n := 0
		for w := range words {
			if g.Contains(w) {
				n++
			}
		}
		if n > best {
			best, bestIdx = n, i
		}
	}

	switch best {
	case game.GroupSize:
		m.solved = append(m.solved, m.groups[bestIdx])
		m.groups = append(m.groups[:bestIdx], m.groups[bestIdx+1:]...)
		return game.Success, nil
	case game.GroupSize - 1:
		return game.OneAway, nil
	default:
		return game.Failure, nil
	}
}

// Shuffle implements Shuffler. Word order is not observable on this board,
// so it only counts calls.
func (m *Memory) Shuffle(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shuffles++
	return nil
}

// Solved returns the number of groups found so far.
func (m *Memory) Solved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.solved)
}

// Shuffles returns the number of Shuffle calls.
func (m *Memory) Shuffles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffles
}
