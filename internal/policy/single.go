package policy

import (
	"context"
	"fmt"

	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/model"
)

// SingleRequest asks the model once per game and submits its ranked groups
// in order. A SingleRequest serves one game; create a new one per puzzle.
type SingleRequest struct {
	proposer model.Proposer
	queue    []model.Guess
	asked    bool
}

// NewSingleRequest creates a single-request policy for one game.
func NewSingleRequest(p model.Proposer) *SingleRequest {
	return &SingleRequest{proposer: p}
}

// NextGuess implements Guesser. Groups that are no longer entirely on the
// board, or were already submitted, are skipped.
func (s *SingleRequest) NextGuess(ctx context.Context, st *game.State) (model.Guess, error) {
	if !s.asked {
		guesses, err := s.proposer.ProposeGroups(ctx, st.Remaining(), nil)
		if err != nil {
			return model.Guess{}, fmt.Errorf("propose groups: %w", err)
		}
		s.queue, s.asked = guesses, true
	}
	remaining := st.Remaining()
	for len(s.queue) > 0 {
		g := s.queue[0]
		s.queue = s.queue[1:]
		if !g.Words.SubsetOf(remaining) {
			continue
		}
		if _, seen := st.FindMostRecentMatchingAttempt(g.Words); seen {
			continue
		}
		return g, nil
	}
	return model.Guess{}, ErrExhausted
}

// Left reports how many queued groups have not been handed out.
func (s *SingleRequest) Left() int { return len(s.queue) }
