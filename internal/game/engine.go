// internal/game/engine.go
//
// Game state for a single Connections puzzle attempt.
// Responsibilities:
//   - Hold the words still on the board and the append-only attempt history.
//   - Derive the status (in progress/won/lost) from history on every call.
//   - Answer history queries used by the guess policy (repeat detection and
//     the most relevant unresolved correction).
//
// Notes:
//   - Remaining words are replaced from the board's own observation after a
//     success instead of being recomputed, so the state follows the page.
//   - Once the status is terminal no further attempts are recorded.
package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGameOver  = errors.New("game over")
	ErrGroupSize = errors.New("a group must have exactly 4 words")
)

// DefaultCorrectionOrder prefers near misses over outright failures.
var DefaultCorrectionOrder = []Outcome{OneAway, Failure}

// State is the mutable session for one puzzle. It is owned by a single turn
// loop and is not safe for concurrent use.
type State struct {
	id        int       // puzzle identifier
	rules     Rules     // limits fixed at construction
	groups    int       // number of groups on the initial board
	remaining WordSet   // words not yet placed into a solved group
	history   []Attempt // chronological, append-only
	quit      bool      // set once when the player gives up
}

// NewState starts a game with the full initial board.
func NewState(id int, words WordSet, rules Rules) *State {
	return &State{
		id:        id,
		rules:     rules,
		groups:    words.Len() / GroupSize,
		remaining: words.Clone(),
		history:   []Attempt{},
	}
}

// ID returns the puzzle identifier.
func (s *State) ID() int { return s.id }

// Rules returns the limits the game was created with.
func (s *State) Rules() Rules { return s.rules }

// Remaining returns a copy of the words still on the board.
func (s *State) Remaining() WordSet { return s.remaining.Clone() }

// Attempts returns a copy of the history in chronological order.
func (s *State) Attempts() []Attempt {
	out := make([]Attempt, len(s.history))
	copy(out, s.history)
	return out
}

// RecordAttempt appends the verdict for a submitted group and returns the
// new history entry.
func (s *State) RecordAttempt(words WordSet, outcome Outcome) (Attempt, error) {
	if s.IsOver() {
		return Attempt{}, ErrGameOver
	}
	if words.Len() != GroupSize {
		return Attempt{}, fmt.Errorf("%w: got %d", ErrGroupSize, words.Len())
	}
	a := NewAttempt(words, outcome)
	s.history = append(s.history, a)
	return a, nil
}

// UpdateRemainingWords replaces the remaining words with a fresh board
// observation.
func (s *State) UpdateRemainingWords(words WordSet) {
	s.remaining = words.Clone()
}

// Quit ends the game as lost regardless of the mistake count.
func (s *State) Quit() { s.quit = true }

// Quitted reports whether Quit was called.
func (s *State) Quitted() bool { return s.quit }

// Successes counts attempts the board accepted.
func (s *State) Successes() int {
	n := 0
	for _, a := range s.history {
		if a.outcome == Success {
			n++
		}
	}
	return n
}

// Mistakes counts attempts that were not successes.
func (s *State) Mistakes() int { return len(s.history) - s.Successes() }

// Groups returns the number of groups on the initial board.
func (s *State) Groups() int { return s.groups }

// Status derives the game status. Loss conditions are checked before the win
// condition.
func (s *State) Status() Status {
	if s.quit || s.Mistakes() > s.rules.AllowedMistakes {
		return Lost
	}
	if s.groups > 0 && s.Successes() == s.groups {
		return Won
	}
	return InProgress
}

// IsOver reports whether the status is terminal.
func (s *State) IsOver() bool { return s.Status() != InProgress }

// TurnNumber is the 1-indexed number of the next turn.
func (s *State) TurnNumber() int { return len(s.history) + 1 }

// PreviousAttemptFailed reports whether the last recorded attempt was not a
// success.
func (s *State) PreviousAttemptFailed() bool {
	if len(s.history) == 0 {
		return false
	}
	return s.history[len(s.history)-1].outcome != Success
}

// FindFirstMatchingAttempt returns the earliest attempt whose words include
// every candidate word.
func (s *State) FindFirstMatchingAttempt(candidate WordSet) (Attempt, bool) {
	for _, a := range s.history {
		if a.Covers(candidate) {
			return a, true
		}
	}
	return Attempt{}, false
}

// FindMostRecentMatchingAttempt returns the latest attempt whose words
// include every candidate word.
func (s *State) FindMostRecentMatchingAttempt(candidate WordSet) (Attempt, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Covers(candidate) {
			return s.history[i], true
		}
	}
	return Attempt{}, false
}

// PreviousAttemptForWords is the forward-scan lookup; see
// FindFirstMatchingAttempt.
func (s *State) PreviousAttemptForWords(candidate WordSet) (Attempt, bool) {
	return s.FindFirstMatchingAttempt(candidate)
}

// MostRecentUnresolvedAttempt returns the most recent attempt whose words are
// all still on the board, trying each outcome in order before the next.
// A nil or empty order falls back to DefaultCorrectionOrder.
func (s *State) MostRecentUnresolvedAttempt(order []Outcome) (Attempt, bool) {
	if len(order) == 0 {
		order = DefaultCorrectionOrder
	}
	for _, want := range order {
		for i := len(s.history) - 1; i >= 0; i-- {
			a := s.history[i]
			if a.outcome == want && a.words.SubsetOf(s.remaining) {
				return a, true
			}
		}
	}
	return Attempt{}, false
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteString("==Game State==\n")
	fmt.Fprintf(&b, "Status: %s\n", s.Status())
	fmt.Fprintf(&b, "Remaining Words: %s", s.remaining)
	if len(s.history) > 0 {
		b.WriteString("\nAttempts:")
		for i, a := range s.history {
			fmt.Fprintf(&b, "\n\t%d. %s", i+1, a)
		}
	}
	return b.String()
}
