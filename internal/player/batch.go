package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections-bot/internal/board"
	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/policy"
	"github.com/robalobadob/connections-bot/internal/results"
)

// Opener opens the board for one puzzle. The returned close func releases
// the per-puzzle resources (a browser page), not the shared browser.
type Opener func(ctx context.Context, id int) (board.Board, func() error, error)

// Batch plays puzzles one after another and exports each summary.
type Batch struct {
	Open             Opener
	NewGuesser       func() policy.Guesser // fresh policy per puzzle
	Store            results.Store
	Rules            game.Rules
	ShuffleOnFailure bool
	RunID            string
	Log              zerolog.Logger
	Now              func() time.Time
}

// NewBatch returns a batch with a fresh run id and the global logger.
func NewBatch(open Opener, newGuesser func() policy.Guesser, store results.Store) *Batch {
	return &Batch{
		Open:       open,
		NewGuesser: newGuesser,
		Store:      store,
		Rules:      game.DefaultRules(),
		RunID:      uuid.NewString(),
		Log:        log.Logger,
		Now:        time.Now,
	}
}

// Run plays every id that has no stored result yet. A puzzle that fails is
// logged and left unsaved so a later run retries it; the errors are joined
// into the returned error.
func (b *Batch) Run(ctx context.Context, ids []int) ([]results.Summary, error) {
	var (
		out  []results.Summary
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		l := b.Log.With().Int("puzzle", id).Str("run", b.RunID).Logger()

		done, err := b.Store.Has(ctx, id)
		if err != nil {
			return out, fmt.Errorf("check result %d: %w", id, err)
		}
		if done {
			l.Info().Msg("already has a result, skipping")
			continue
		}

		s, err := b.playOne(ctx, id, l)
		if err != nil {
			l.Error().Err(err).Msg("puzzle failed")
			errs = append(errs, fmt.Errorf("puzzle %d: %w", id, err))
			continue
		}
		if err := b.Store.Save(ctx, s); err != nil {
			return out, fmt.Errorf("save result %d: %w", id, err)
		}
		l.Info().Msg(s.Message())
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

func (b *Batch) playOne(ctx context.Context, id int, l zerolog.Logger) (results.Summary, error) {
	bd, closeBoard, err := b.Open(ctx, id)
	if err != nil {
		return results.Summary{}, err
	}
	defer func() {
		if closeBoard == nil {
			return
		}
		if err := closeBoard(); err != nil {
			l.Warn().Err(err).Msg("close board")
		}
	}()

	p := &Player{
		Board:            bd,
		Guesser:          b.NewGuesser(),
		Rules:            b.Rules,
		ShuffleOnFailure: b.ShuffleOnFailure,
		Log:              l,
	}
	st, err := p.Play(ctx, id)
	if err != nil {
		return results.Summary{}, err
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return results.Summarize(st, b.RunID, now()), nil
}
