// internal/player/player.go
//
// Turn loop for one puzzle.
// Each turn, strictly in sequence:
//  1. optionally shuffle the board after a rejected attempt,
//  2. ask the guess policy for a group,
//  3. submit it to the board,
//  4. record the verdict and, on success, re-read the remaining words,
//  5. stop once the game status is terminal.
//
// A policy that runs out of usable groups ends the game by quitting.
package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections-bot/internal/board"
	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/policy"
)

// Player plays one puzzle against a board.
type Player struct {
	Board            board.Board
	Guesser          policy.Guesser
	Rules            game.Rules
	ShuffleOnFailure bool
	Log              zerolog.Logger
}

// New returns a player with the standard rules and the global logger.
func New(b board.Board, g policy.Guesser) *Player {
	return &Player{Board: b, Guesser: g, Rules: game.DefaultRules(), Log: log.Logger}
}

// Play runs turns until the game is won or lost and returns the final state.
// On error the state so far is returned alongside it.
func (p *Player) Play(ctx context.Context, puzzleID int) (*game.State, error) {
	words, err := p.Board.RemainingWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	st := game.NewState(puzzleID, words, p.Rules)
	l := p.Log.With().Int("puzzle", puzzleID).Logger()
	l.Info().Int("words", words.Len()).Msg("game started")

	for !st.IsOver() {
		if err := p.turn(ctx, st, l); err != nil {
			return st, err
		}
	}
	l.Info().
		Stringer("status", st.Status()).
		Int("attempts", len(st.Attempts())).
		Int("mistakes", st.Mistakes()).
		Int("correct", st.Successes()).
		Msg("game over")
	return st, nil
}

func (p *Player) turn(ctx context.Context, st *game.State, l zerolog.Logger) error {
	l = l.With().Int("turn", st.TurnNumber()).Logger()
	l.Info().Msg(st.String())

	if p.ShuffleOnFailure && st.PreviousAttemptFailed() {
		if err := p.shuffle(ctx, st); err != nil {
			l.Warn().Err(err).Msg("shuffle failed")
		}
	}

	guess, err := p.Guesser.NextGuess(ctx, st)
	if errors.Is(err, policy.ErrExhausted) {
		l.Warn().Msg("no usable guesses left, quitting")
		st.Quit()
		return nil
	}
	if err != nil {
		return fmt.Errorf("turn %d: %w", st.TurnNumber(), err)
	}
	l.Info().Str("theme", guess.Theme).Stringer("words", guess.Words).Msg("guess")

	outcome, err := p.Board.AttemptGroup(ctx, guess.Words)
	if err != nil {
		return fmt.Errorf("turn %d: submit: %w", st.TurnNumber(), err)
	}
	attempt, err := st.RecordAttempt(guess.Words, outcome)
	if err != nil {
		return fmt.Errorf("turn %d: record: %w", st.TurnNumber(), err)
	}
	l.Info().Str("result", attempt.String()).Msg("board verdict")

	if outcome == game.Success {
		words, err := p.Board.RemainingWords(ctx)
		if err != nil {
			return fmt.Errorf("read board: %w", err)
		}
		st.UpdateRemainingWords(words)
	}
	return nil
}

func (p *Player) shuffle(ctx context.Context, st *game.State) error {
	s, ok := p.Board.(board.Shuffler)
	if !ok {
		return nil
	}
	if err := s.Shuffle(ctx); err != nil {
		return err
	}
	words, err := p.Board.RemainingWords(ctx)
	if err != nil {
		return err
	}
	st.UpdateRemainingWords(words)
	return nil
}
