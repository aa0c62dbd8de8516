package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections-bot/internal/game"
)

func finishedState(t *testing.T) *game.State {
	t.Helper()
	fish := game.ParseWordSet("bass", "flounder", "salmon", "trout")
	rest := game.ParseWordSet("a", "b", "c", "d")
	st := game.NewState(12, game.ParseWordSet("bass", "flounder", "salmon", "trout", "a", "b", "c", "d"), game.DefaultRules())
	_, err := st.RecordAttempt(game.ParseWordSet("bass", "flounder", "a", "b"), game.Failure)
	require.NoError(t, err)
	_, err = st.RecordAttempt(fish, game.Success)
	require.NoError(t, err)
	st.UpdateRemainingWords(rest)
	_, err = st.RecordAttempt(rest, game.Success)
	require.NoError(t, err)
	return st
}

func TestSummarize(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Summarize(finishedState(t), "run-1", at)

	assert.Equal(t, 12, s.GameID)
	assert.Equal(t, "WON", s.Status)
	assert.Equal(t, 2, s.CorrectGroups)
	assert.Equal(t, 3, s.Attempts)
	assert.Equal(t, 1, s.Mistakes)
	require.Len(t, s.History, 3)
	assert.Equal(t, AttemptRecord{Turn: 1, Outcome: "FAILURE", Words: []string{"A", "B", "BASS", "FLOUNDER"}}, s.History[0])

	want := "Game 12 over! WON in 3 attempts with 1 mistakes and 2 correct groups." +
		"\n\t1. FAILURE: [A, B, BASS, FLOUNDER]" +
		"\n\t2. SUCCESS: [BASS, FLOUNDER, SALMON, TROUT]" +
		"\n\t3. SUCCESS: [A, B, C, D]"
	assert.Equal(t, want, s.Message())
	assert.Equal(t, s.Message(), Summarize(finishedState(t), "run-1", at).Message())
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": db,
	}
}

func TestStores(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			has, err := st.Has(ctx, 12)
			require.NoError(t, err)
			assert.False(t, has)

			_, err = st.Get(ctx, 12)
			assert.ErrorIs(t, err, ErrNotFound)

			s := Summarize(finishedState(t), "run-1", at)
			require.NoError(t, st.Save(ctx, s))

			has, err = st.Has(ctx, 12)
			require.NoError(t, err)
			assert.True(t, has)

			got, err := st.Get(ctx, 12)
			require.NoError(t, err)
			assert.Equal(t, s.Status, got.Status)
			assert.Equal(t, s.Attempts, got.Attempts)
			assert.Equal(t, s.History, got.History)
			assert.True(t, at.Equal(got.FinishedAt))

			// saving again replaces the earlier result
			s.RunID = "run-2"
			s.History = s.History[:1]
			require.NoError(t, st.Save(ctx, s))
			got, err = st.Get(ctx, 12)
			require.NoError(t, err)
			assert.Equal(t, "run-2", got.RunID)
			assert.Len(t, got.History, 1)

			other := s
			other.GameID = 40
			require.NoError(t, st.Save(ctx, other))
			list, err := st.List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, 40, list[0].GameID)

			list, err = st.List(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			require.NoError(t, st.Delete(ctx, 12))
			assert.ErrorIs(t, st.Delete(ctx, 12), ErrNotFound)
			has, err = st.Has(ctx, 12)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}
