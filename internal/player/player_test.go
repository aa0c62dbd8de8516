package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections-bot/internal/board"
	"github.com/robalobadob/connections-bot/internal/game"
	"github.com/robalobadob/connections-bot/internal/model"
	"github.com/robalobadob/connections-bot/internal/policy"
	"github.com/robalobadob/connections-bot/internal/puzzle"
	"github.com/robalobadob/connections-bot/internal/results"
)

func samplePuzzle(id int) puzzle.Puzzle {
	return puzzle.Puzzle{ID: id, Groups: []puzzle.Group{
		{Theme: "Fish", Words: []string{"bass", "flounder", "salmon", "trout"}},
		{Theme: "Fire _", Words: []string{"ant", "drill", "island", "opal"}},
		{Theme: "Fruit", Words: []string{"lyme", "mellon", "pair", "plumb"}},
		{Theme: "Gestures", Words: []string{"pinch", "spread", "swipe", "tap"}},
	}}
}

// oracle proposes the true groups still on the board, with an optional
// leading wrong group for the first n calls.
type oracle struct {
	p         puzzle.Puzzle
	wrongFor  int
	wrong     game.WordSet
	calls     int
	withHints int
}

func (o *oracle) ProposeGroups(_ context.Context, words game.WordSet, hint *model.Correction) ([]model.Guess, error) {
	o.calls++
	if hint != nil {
		o.withHints++
	}
	var out []model.Guess
	if o.calls <= o.wrongFor {
		out = append(out, model.Guess{Words: o.wrong, Theme: "wrong"})
	}
	for _, g := range o.p.Groups {
		ws := g.WordSet()
		if ws.SubsetOf(words) {
			out = append(out, model.Guess{Words: ws, Theme: g.Theme})
		}
	}
	return out, nil
}

// fixedGuesser always returns the same group.
type fixedGuesser struct{ words game.WordSet }

func (f fixedGuesser) NextGuess(context.Context, *game.State) (model.Guess, error) {
	return model.Guess{Words: f.words, Theme: "same"}, nil
}

type errGuesser struct{ err error }

func (e errGuesser) NextGuess(context.Context, *game.State) (model.Guess, error) {
	return model.Guess{}, e.err
}

func newPlayer(b board.Board, g policy.Guesser) *Player {
	p := New(b, g)
	p.Log = zerolog.Nop()
	return p
}

func TestPlayWinsWithOracle(t *testing.T) {
	pz := samplePuzzle(1)
	o := &oracle{p: pz}
	g := policy.NewRefining(o, policy.DefaultConfig()).WithLogger(zerolog.Nop())

	st, err := newPlayer(board.NewMemory(pz), g).Play(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.Won, st.Status())
	assert.Equal(t, 4, len(st.Attempts()))
	assert.Zero(t, st.Remaining().Len())
	// the last group is submitted without asking the model
	assert.Equal(t, 3, o.calls)
}

func TestPlayRecoversFromMistakes(t *testing.T) {
	pz := samplePuzzle(1)
	o := &oracle{p: pz, wrongFor: 2, wrong: game.ParseWordSet("bass", "flounder", "salmon", "opal")}
	g := policy.NewRefining(o, policy.DefaultConfig()).WithLogger(zerolog.Nop())
	b := board.NewMemory(pz)

	p := newPlayer(b, g)
	p.ShuffleOnFailure = true
	st, err := p.Play(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.Won, st.Status())
	assert.Equal(t, game.OneAway, st.Attempts()[0].Outcome())
	assert.Equal(t, 1, st.Mistakes())
	assert.Equal(t, 1, b.Shuffles())
	assert.Positive(t, o.withHints)
}

func TestPlayLosesAfterFourMistakes(t *testing.T) {
	pz := samplePuzzle(1)
	st, err := newPlayer(board.NewMemory(pz), fixedGuesser{game.ParseWordSet("bass", "ant", "lyme", "pinch")}).
		Play(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.Lost, st.Status())
	assert.Len(t, st.Attempts(), 4)
	assert.False(t, st.Quitted())
}

func TestPlayQuitsWhenExhausted(t *testing.T) {
	pz := samplePuzzle(1)
	st, err := newPlayer(board.NewMemory(pz), errGuesser{policy.ErrExhausted}).Play(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.Lost, st.Status())
	assert.True(t, st.Quitted())
	assert.Empty(t, st.Attempts())
}

func TestPlaySingleRequestQuitsWhenListRunsOut(t *testing.T) {
	pz := samplePuzzle(1)
	// only two true groups are ever proposed
	short := &oracle{p: puzzle.Puzzle{ID: 1, Groups: pz.Groups[:2]}}
	st, err := newPlayer(board.NewMemory(pz), policy.NewSingleRequest(short)).Play(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, game.Lost, st.Status())
	assert.True(t, st.Quitted())
	assert.Equal(t, 2, st.Successes())
	assert.Equal(t, 1, short.calls)
}

func TestPlayMalformedAborts(t *testing.T) {
	pz := samplePuzzle(1)
	bad := errGuesser{&model.MalformedResponseError{Reason: "bad"}}
	st, err := newPlayer(board.NewMemory(pz), bad).Play(context.Background(), 1)
	var mal *model.MalformedResponseError
	require.ErrorAs(t, err, &mal)
	require.NotNil(t, st)
	assert.Equal(t, game.InProgress, st.Status())
}

type brokenBoard struct{ board.Board }

func (brokenBoard) RemainingWords(context.Context) (game.WordSet, error) {
	return nil, errors.New("page gone")
}

func TestPlayBoardError(t *testing.T) {
	_, err := newPlayer(brokenBoard{}, fixedGuesser{}).Play(context.Background(), 1)
	assert.ErrorContains(t, err, "page gone")
}

func TestBatchSkipsRecordedPuzzles(t *testing.T) {
	ctx := context.Background()
	store := results.NewMemoryStore()
	require.NoError(t, store.Save(ctx, results.Summary{GameID: 2, Status: "WON"}))

	var opened []int
	open := func(_ context.Context, id int) (board.Board, func() error, error) {
		opened = append(opened, id)
		if id == 4 {
			return nil, nil, errors.New("no such puzzle")
		}
		return board.NewMemory(samplePuzzle(id)), func() error { return nil }, nil
	}
	b := NewBatch(open, func() policy.Guesser {
		return policy.NewRefining(&oracle{p: samplePuzzle(0)}, policy.DefaultConfig()).WithLogger(zerolog.Nop())
	}, store)
	b.Log = zerolog.Nop()
	b.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	got, err := b.Run(ctx, []int{1, 2, 3, 4})
	require.Error(t, err)
	assert.ErrorContains(t, err, "puzzle 4")
	assert.Equal(t, []int{1, 3, 4}, opened)
	require.Len(t, got, 2)

	s, err := store.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "WON", s.Status)
	assert.Equal(t, b.RunID, s.RunID)
	assert.NotEmpty(t, s.RunID)

	has, err := store.Has(ctx, 4)
	require.NoError(t, err)
	assert.False(t, has)
}
