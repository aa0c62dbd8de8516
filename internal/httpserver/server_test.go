package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections-bot/internal/results"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, results.Store) {
	t.Helper()
	st := results.NewMemoryStore()
	ctx := context.Background()
	for _, id := range []int{3, 7} {
		require.NoError(t, st.Save(ctx, results.Summary{
			GameID:        id,
			RunID:         "run-1",
			Status:        "WON",
			CorrectGroups: 4,
			Attempts:      5,
			Mistakes:      1,
			History: []results.AttemptRecord{
				{Turn: 1, Outcome: "ONE_AWAY", Words: []string{"A", "B", "C", "D"}},
			},
			FinishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		}))
	}
	s := New(st, testSecret).WithLogger(zerolog.Nop())
	return s, st
}

func do(s *Server, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestToday(t *testing.T) {
	s, _ := newTestServer(t)
	s.now = func() time.Time { return time.Date(2023, 6, 13, 12, 0, 0, 0, time.UTC) }
	rec := do(s, http.MethodGet, "/puzzles/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"date":"2023-06-13"}`, rec.Body.String())
}

func TestListResults(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/results", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []resultRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].GameID)
	assert.Contains(t, got[0].Message, "Game 7 over! WON")

	rec = do(s, http.MethodGet, "/results?limit=1", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	rec = do(s, http.MethodGet, "/results?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResult(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/results/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got resultRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.GameID)
	require.Len(t, got.History, 1)
	assert.Equal(t, "ONE_AWAY", got.History[0].Outcome)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/results/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/results/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/nope", "").Code)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodDelete, "/results/3", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodDelete, "/results/3", "garbage").Code)

	wrongKey, _, err := SignAdminToken("other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodDelete, "/results/3", wrongKey).Code)

	expired, _, err := SignAdminToken(testSecret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodDelete, "/results/3", expired).Code)

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodDelete, "/results/3", notAdmin).Code)

	has, err := st.Has(ctx, 3)
	require.NoError(t, err)
	assert.True(t, has)

	tok, exp, err := SignAdminToken(testSecret, time.Hour)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	assert.Equal(t, http.StatusNoContent, do(s, http.MethodDelete, "/results/3", tok).Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodDelete, "/results/3", tok).Code)

	has, err = st.Has(ctx, 3)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSignAdminTokenNeedsSecret(t *testing.T) {
	_, _, err := SignAdminToken("", time.Hour)
	assert.Error(t, err)
}
