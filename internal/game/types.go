// internal/game/types.go
//
// Core type definitions for the Connections game state.
// Defines:
//   - Word / WordSet: normalized board words and unordered groups of them.
//   - Outcome: board feedback for one submitted group (success/failure/one away).
//   - Status: derived game status (in progress/won/lost).
//   - Attempt: immutable record of one submitted group.
//   - Rules: per-game limits passed in at construction.

package game

import (
	"sort"
	"strings"
)

// GroupSize is the number of words in every group on the board.
const GroupSize = 4

// DefaultAllowedMistakes is the number of non-successful attempts tolerated
// before the game is lost (the fourth mistake loses).
const DefaultAllowedMistakes = 3

// Word is a board word in canonical form (trimmed, upper case).
type Word string

// Normalize returns the canonical form of a raw word.
func Normalize(s string) Word {
	return Word(strings.ToUpper(strings.TrimSpace(s)))
}

// WordSet is an unordered set of words.
type WordSet map[Word]struct{}

// NewWordSet builds a set from already-normalized words.
func NewWordSet(words ...Word) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// ParseWordSet normalizes raw strings into a set.
func ParseWordSet(raw ...string) WordSet {
	s := make(WordSet, len(raw))
	for _, r := range raw {
		s[Normalize(r)] = struct{}{}
	}
	return s
}

// Len returns the number of words in the set.
func (s WordSet) Len() int { return len(s) }

// Contains reports whether w is in the set.
func (s WordSet) Contains(w Word) bool {
	_, ok := s[w]
	return ok
}

// SubsetOf reports whether every word of s is also in other.
func (s WordSet) SubsetOf(other WordSet) bool {
	if len(s) > len(other) {
		return false
	}
	for w := range s {
		if !other.Contains(w) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same words.
func (s WordSet) Equal(other WordSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Clone returns an independent copy.
func (s WordSet) Clone() WordSet {
	out := make(WordSet, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}

// Sorted returns the words in lexical order.
func (s WordSet) Sorted() []Word {
	out := make([]Word, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the words in lexical order as plain strings.
func (s WordSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, w := range sorted {
		out[i] = string(w)
	}
	return out
}

func (s WordSet) String() string {
	return "[" + strings.Join(s.Strings(), ", ") + "]"
}

// Outcome is the board's verdict on a submitted group.
type Outcome int

const (
	Success Outcome = iota + 1
	Failure
	OneAway
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case OneAway:
		return "ONE_AWAY"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome maps an outcome name (as printed by String) back to an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return Success, true
	case "FAILURE":
		return Failure, true
	case "ONE_AWAY", "ONE-AWAY", "ONEAWAY":
		return OneAway, true
	}
	return 0, false
}

// Status is the coarse game status. It is always derived, never stored.
type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "WON"
	case Lost:
		return "LOST"
	default:
		return "IN_PROGRESS"
	}
}

// Attempt is one submitted group and the board's verdict on it.
// Fields are unexported so a recorded attempt cannot be changed.
type Attempt struct {
	words   WordSet
	outcome Outcome
}

// NewAttempt builds a standalone attempt record (history entries are created
// by State.RecordAttempt).
func NewAttempt(words WordSet, outcome Outcome) Attempt {
	return Attempt{words: words.Clone(), outcome: outcome}
}

// Words returns a copy of the submitted words.
func (a Attempt) Words() WordSet { return a.words.Clone() }

// Outcome returns the board's verdict.
func (a Attempt) Outcome() Outcome { return a.outcome }

// Covers reports whether candidate is a subset of this attempt's words.
func (a Attempt) Covers(candidate WordSet) bool { return candidate.SubsetOf(a.words) }

func (a Attempt) String() string {
	return a.outcome.String() + ": " + a.words.String()
}

// Rules holds the per-game limits.
type Rules struct {
	AllowedMistakes int // non-successful attempts tolerated; one more loses
}

// DefaultRules returns the standard puzzle limits.
func DefaultRules() Rules {
	return Rules{AllowedMistakes: DefaultAllowedMistakes}
}
