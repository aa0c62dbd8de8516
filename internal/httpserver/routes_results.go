// internal/httpserver/routes_results.go
//
// HTTP routes for exported game results.
// Exposes three endpoints under /results:
//   - GET    /results           → most recent summaries (?limit=N, default 50, max 500)
//   - GET    /results/{gameID}  → one summary with its attempt history
//   - DELETE /results/{gameID}  → drop a summary so a later batch replays it (admin)
//
// A summary also carries the rendered game-over message.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connections-bot/internal/results"
)

const maxListLimit = 500

// resultRes is one summary as served by the API.
type resultRes struct {
	results.Summary
	Message string `json:"message"`
}

// mountResults registers all /results routes.
func (s *Server) mountResults(r chi.Router) {
	r.Route("/results", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{gameID}", s.handleGet)
		r.With(s.requireAdmin).Delete("/{gameID}", s.handleDelete)
	})
}

// handleList returns the most recent summaries, newest puzzle first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = min(n, maxListLimit)
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list results")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	out := make([]resultRes, 0, len(list))
	for _, sm := range list {
		out = append(out, resultRes{Summary: sm, Message: sm.Message()})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleGet returns one summary.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	sm, err := s.store.Get(r.Context(), id)
	if errors.Is(err, results.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int("game", id).Msg("get result")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(resultRes{Summary: sm, Message: sm.Message()})
}

// handleDelete removes one summary.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, results.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int("game", id).Msg("delete result")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	s.log.Info().Int("game", id).Msg("result deleted")
	w.WriteHeader(http.StatusNoContent)
}

// gameID parses the {gameID} URL param, writing a 400 when it is not a
// positive integer.
func gameID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "gameID"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_game_id")
		return 0, false
	}
	return id, true
}
