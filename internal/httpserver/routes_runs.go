// internal/httpserver/routes_runs.go
//
// HTTP routes for the finished-run log.
// Exposes two endpoints under /runs:
//   - GET /runs/recent → latest finished runs, newest first
//   - GET /runs/top    → highest scores, earliest finisher wins ties
//
// Both accept ?limit=N (1..100, default 20).

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/tidal-recall/internal/runs"
)

const maxRunsLimit = 100

// mountRuns registers all /runs routes.
func (s *Server) mountRuns(r chi.Router) {
	r.Route("/runs", func(r chi.Router) {
		r.Get("/recent", s.handleRuns(s.runs.Recent))
		r.Get("/top", s.handleRuns(s.runs.Top))
	})
}

type runsRes struct {
	Runs []runs.Run `json:"runs"`
}

func (s *Server) handleRuns(query func(ctx context.Context, limit int) ([]runs.Run, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxRunsLimit {
				writeError(w, http.StatusBadRequest, "bad_limit")
				return
			}
			limit = n
		}
		rows, err := query(r.Context(), limit)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("query runs")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if rows == nil {
			rows = []runs.Run{}
		}
		_ = json.NewEncoder(w).Encode(runsRes{Runs: rows})
	}
}
