// Package model is the language-model side of the bot: the guess and
// correction types the policy exchanges with a proposer, the prompt and
// response handling, and the Gemini-backed proposer.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalobadob/connections-bot/internal/game"
)

// ErrCorrectSuccess is returned when asked to build a correction from an
// attempt the board accepted.
var ErrCorrectSuccess = errors.New("cannot correct a successful attempt")

// Guess is a proposed group of words and the theme the model gave it.
type Guess struct {
	Words game.WordSet
	Theme string
}

func (g Guess) String() string { return g.Theme + ": " + g.Words.String() }

// Proposer returns groups of four words, most confident first.
// hint is nil for a fresh proposal.
type Proposer interface {
	ProposeGroups(ctx context.Context, words game.WordSet, hint *Correction) ([]Guess, error)
}

// CorrectionKind distinguishes the two kinds of rejected group.
type CorrectionKind int

const (
	// SwapOne: the group was one word away; keep three words, replace one.
	SwapOne CorrectionKind = iota + 1
	// Regroup: the group was wrong; propose a different grouping.
	Regroup
)

func (k CorrectionKind) String() string {
	switch k {
	case SwapOne:
		return "swap-one"
	case Regroup:
		return "regroup"
	default:
		return "unknown"
	}
}

// Correction is structured feedback about a previously rejected group.
type Correction struct {
	Kind  CorrectionKind
	Words game.WordSet
}

// NewCorrection builds the correction for a rejected attempt.
func NewCorrection(a game.Attempt) (*Correction, error) {
	switch a.Outcome() {
	case game.OneAway:
		return &Correction{Kind: SwapOne, Words: a.Words()}, nil
	case game.Failure:
		return &Correction{Kind: Regroup, Words: a.Words()}, nil
	case game.Success:
		return nil, ErrCorrectSuccess
	default:
		return nil, fmt.Errorf("unknown outcome %d", a.Outcome())
	}
}

func (c *Correction) String() string {
	if c == nil {
		return "none"
	}
	return c.Kind.String() + " " + c.Words.String()
}
