// internal/results/summary.go
//
// End-of-game summary derived purely from the final game state, and the
// Store interface used to export it.

package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/connections-bot/internal/game"
)

var ErrNotFound = errors.New("result not found")

// AttemptRecord is one line of the attempt history in a summary.
type AttemptRecord struct {
	Turn    int      `json:"turn"`
	Outcome string   `json:"outcome"`
	Words   []string `json:"words"`
}

// Summary is the terminal record of one played puzzle.
type Summary struct {
	GameID        int             `json:"gameId"`
	RunID         string          `json:"runId"`
	Status        string          `json:"status"`
	CorrectGroups int             `json:"correctGroups"`
	Attempts      int             `json:"attempts"`
	Mistakes      int             `json:"mistakes"`
	History       []AttemptRecord `json:"history"`
	FinishedAt    time.Time       `json:"finishedAt"`
}

// Summarize builds the summary of a finished (or abandoned) game.
func Summarize(st *game.State, runID string, finishedAt time.Time) Summary {
	attempts := st.Attempts()
	hist := make([]AttemptRecord, len(attempts))
	for i, a := range attempts {
		hist[i] = AttemptRecord{Turn: i + 1, Outcome: a.Outcome().String(), Words: a.Words().Strings()}
	}
	return Summary{
		GameID:        st.ID(),
		RunID:         runID,
		Status:        st.Status().String(),
		CorrectGroups: st.Successes(),
		Attempts:      len(attempts),
		Mistakes:      st.Mistakes(),
		History:       hist,
		FinishedAt:    finishedAt.UTC(),
	}
}

// Message renders the game-over text printed at the end of a game.
func (s Summary) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game %d over! %s in %d attempts with %d mistakes and %d correct groups.",
		s.GameID, s.Status, s.Attempts, s.Mistakes, s.CorrectGroups)
	for _, a := range s.History {
		fmt.Fprintf(&b, "\n\t%d. %s: [%s]", a.Turn, a.Outcome, strings.Join(a.Words, ", "))
	}
	return b.String()
}

// Store persists summaries, one per puzzle id.
// Implementations may be backed by memory or SQLite.
type Store interface {
	// Has reports whether a result for the puzzle was already saved.
	Has(ctx context.Context, gameID int) (bool, error)

	// Save stores a summary, replacing any previous one for the puzzle.
	Save(ctx context.Context, s Summary) error

	// Get returns the summary for a puzzle or ErrNotFound.
	Get(ctx context.Context, gameID int) (Summary, error)

	// List returns summaries ordered by puzzle id, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a summary so the puzzle can be played again.
	Delete(ctx context.Context, gameID int) error
}
