// internal/policy/policy.go
//
// Guess policies: decide what to ask the model each turn and reconcile its
// answer with the attempt history before anything is submitted.
//
//   - Refining asks the model every turn, feeding back the most relevant
//     unresolved rejection, and re-asks when the top group repeats a
//     rejected one.
//   - SingleRequest asks once per game and works down the ranked list.
//
// Both return ErrExhausted when no usable group is left; the turn loop
// turns that into a quit.
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/model"
)

var (
	ErrExhausted    = errors.New("no usable candidate groups left")
	ErrInvalidGuess = errors.New("guess is not 4 words from the board")
)

// DefaultMaxCorrections bounds the re-asks within one turn.
const DefaultMaxCorrections = 2

// Guesser picks the next group to submit.
type Guesser interface {
	NextGuess(ctx context.Context, st *game.State) (model.Guess, error)
}

// Config is the policy configuration passed at construction.
type Config struct {
	AllowedMistakes int            // mirrored into game.Rules by the caller
	CorrectionOrder []game.Outcome // which rejection to feed back first
	MaxCorrections  int            // re-asks per turn before giving up
}

// DefaultConfig returns the standard policy settings.
func DefaultConfig() Config {
	return Config{
		AllowedMistakes: game.DefaultAllowedMistakes,
		CorrectionOrder: append([]game.Outcome(nil), game.DefaultCorrectionOrder...),
		MaxCorrections:  DefaultMaxCorrections,
	}
}

// Rules derives the game rules from the policy configuration.
func (c Config) Rules() game.Rules {
	return game.Rules{AllowedMistakes: c.AllowedMistakes}
}

// Refining asks the model for a fresh ranked list every turn.
type Refining struct {
	proposer model.Proposer
	cfg      Config
	log      zerolog.Logger
}

// NewRefining creates the per-turn refining policy.
func NewRefining(p model.Proposer, cfg Config) *Refining {
	if len(cfg.CorrectionOrder) == 0 {
		cfg.CorrectionOrder = game.DefaultCorrectionOrder
	}
	if cfg.MaxCorrections < 0 {
		cfg.MaxCorrections = 0
	}
	return &Refining{proposer: p, cfg: cfg, log: log.Logger}
}

// WithLogger sets the logger used for per-turn decisions.
func (r *Refining) WithLogger(l zerolog.Logger) *Refining {
	r.log = l
	return r
}

// NextGuess implements Guesser.
func (r *Refining) NextGuess(ctx context.Context, st *game.State) (model.Guess, error) {
	remaining := st.Remaining()
	if remaining.Len() == game.GroupSize {
		return model.Guess{Words: remaining, Theme: "last group"}, nil
	}

	var hint *model.Correction
	if prior, ok := st.MostRecentUnresolvedAttempt(r.cfg.CorrectionOrder); ok {
		c, err := model.NewCorrection(prior)
		if err != nil {
			return model.Guess{}, err
		}
		hint = c
	}

	guess, err := r.top(ctx, remaining, hint)
	if err != nil {
		return model.Guess{}, err
	}

	for i := 0; ; i++ {
		prior, ok := st.FindMostRecentMatchingAttempt(guess.Words)
		if !ok || prior.Outcome() == game.Success {
			return guess, nil
		}
		if i >= r.cfg.MaxCorrections {
			r.log.Warn().Stringer("group", guess.Words).Int("corrections", i).Msg("model keeps repeating a rejected group")
			return model.Guess{}, ErrExhausted
		}
		c, err := model.NewCorrection(prior)
		if err != nil {
			return model.Guess{}, err
		}
		r.log.Info().Stringer("group", guess.Words).Stringer("outcome", prior.Outcome()).Msg("repeated group, asking for a modified guess")
		if guess, err = r.top(ctx, remaining, c); err != nil {
			return model.Guess{}, err
		}
	}
}

// top asks the model and returns its most confident group.
func (r *Refining) top(ctx context.Context, remaining game.WordSet, hint *model.Correction) (model.Guess, error) {
	guesses, err := r.proposer.ProposeGroups(ctx, remaining, hint)
	if err != nil {
		return model.Guess{}, fmt.Errorf("propose groups: %w", err)
	}
	for i, g := range guesses {
		r.log.Debug().Int("rank", i+1).Str("theme", g.Theme).Stringer("words", g.Words).Msg("candidate")
	}
	if len(guesses) == 0 {
		return model.Guess{}, ErrExhausted
	}
	if err := validate(guesses[0], remaining); err != nil {
		return model.Guess{}, err
	}
	return guesses[0], nil
}

// validate rejects a group that could not be submitted as-is.
func validate(g model.Guess, remaining game.WordSet) error {
	if g.Words.Len() != game.GroupSize || !g.Words.SubsetOf(remaining) {
		return fmt.Errorf("%w: %s", ErrInvalidGuess, g.Words)
	}
	return nil
}
