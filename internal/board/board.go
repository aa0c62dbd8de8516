// Package board is the puzzle board as seen by the turn loop: read the words
// still in play, submit a group of four and learn the verdict.
package board

import (
	"context"
	"errors"

	"github.com/robalobadob/connections-bot/internal/game"
)

var (
	ErrGroupSize   = errors.New("board: a group must have exactly 4 words")
	ErrUnknownWord = errors.New("board: word is not on the board")
)

// Board is the capability the turn loop plays against.
type Board interface {
	// RemainingWords observes the words not yet placed in a solved group.
	RemainingWords(ctx context.Context) (game.WordSet, error)
	// AttemptGroup submits exactly four words.
	AttemptGroup(ctx context.Context, words game.WordSet) (game.Outcome, error)
}

// Shuffler is implemented by boards that can reorder their tiles.
type Shuffler interface {
	Shuffle(ctx context.Context) error
}
