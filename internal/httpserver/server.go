// internal/httpserver/server.go
//
// HTTP server wiring for the Tidal Recall backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/treasures", "/treasures/{id}".
//   - Game endpoints: POST /game/start, POST /game/select, GET /game.
//   - Run log endpoints: mounted under /runs (only when a log is configured).
//   - Idle eviction: Sweep/Janitor drop sessions whose tokens have expired.
//
// Notes:
//   - The server is a thin presentation boundary: every mutation goes through
//     game.Session via store.Store.Update, one event at a time.
//   - Players are identified by a signed token (cookie or bearer header) that
//     carries their session ID.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tidal-recall/internal/game"
	"github.com/robalobadob/tidal-recall/internal/runs"
	"github.com/robalobadob/tidal-recall/internal/shuffle"
	"github.com/robalobadob/tidal-recall/internal/store"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

// RunLog is the subset of *runs.Store the server needs.
type RunLog interface {
	Record(ctx context.Context, r runs.Run) error
	Recent(ctx context.Context, limit int) ([]runs.Run, error)
	Top(ctx context.Context, limit int) ([]runs.Run, error)
}

// Options configures a Server. Store and Catalog are required.
type Options struct {
	Store        store.Store
	Catalog      *treasures.Catalog
	Runs         RunLog         // nil disables /runs and run recording
	Source       shuffle.Source // nil means shuffle.Crypto()
	ClientOrigin string
	TokenSecret  string
	TokenTTL     time.Duration
	CookieName   string
	Secure       bool // Secure + SameSite=None cookies
	Now          func() time.Time
}

// Server bundles router, session store, catalog and optional run log.
type Server struct {
	r          *chi.Mux
	store      store.Store
	catalog    *treasures.Catalog
	runs       RunLog
	src        shuffle.Source
	srcMu      sync.Mutex // guards src, which may not be safe for concurrent use
	tokens     tokens
	cookieName string
	secure     bool
	now        func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	if o.Source == nil {
		o.Source = shuffle.Crypto()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.CookieName == "" {
		o.CookieName = "tidal_session"
	}
	s := &Server{
		r:          chi.NewRouter(),
		store:      o.Store,
		catalog:    o.Catalog,
		runs:       o.Runs,
		src:        o.Source,
		tokens:     tokens{secret: []byte(o.TokenSecret), ttl: o.TokenTTL, now: o.Now},
		cookieName: o.CookieName,
		secure:     o.Secure,
		now:        o.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)
	s.r.Use(jsonContentType)
	s.r.Use(cors(o.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"tidal-recall","endpoints":["/health","/treasures","POST /game/start","POST /game/select","GET /game","/runs/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/treasures", s.handleTreasures)
	s.r.Get("/treasures/{id}", s.handleTreasure)

	s.r.With(s.withOptionalSession()).Post("/game/start", s.handleStart)
	s.r.With(s.requireSession()).Post("/game/select", s.handleSelect)
	s.r.With(s.requireSession()).Get("/game", s.handleGet)

	if s.runs != nil {
		s.mountRuns(s.r)
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ CATALOG ------------------------------------

type treasuresRes struct {
	Count int              `json:"count"`
	Items []treasures.Item `json:"items"`
}

func (s *Server) handleTreasures(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(treasuresRes{Count: s.catalog.Count(), Items: s.catalog.All()})
}

func (s *Server) handleTreasure(w http.ResponseWriter, r *http.Request) {
	it, ok := s.catalog.Lookup(strings.ToLower(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_treasure")
		return
	}
	_ = json.NewEncoder(w).Encode(it)
}

// ------------------------------ GAME ---------------------------------------

// gameView is what the client renders: the snapshot plus layout and
// end-of-run labels.
type gameView struct {
	game.Snapshot
	Columns      int    `json:"columns"`
	Title        string `json:"title,omitempty"`
	RestartLabel string `json:"restartLabel,omitempty"`
}

type startRes struct {
	Token string   `json:"token"`
	Game  gameView `json:"game"`
}

type selectReq struct {
	ID string `json:"id"`
}

type selectRes struct {
	Outcome game.Outcome `json:"outcome"`
	Ignored bool         `json:"ignored"`
	Game    gameView     `json:"game"`
}

// handleStart restarts the caller's session, or creates one if the caller
// has none (or it has been dropped), and (re)issues the player token.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var snap game.Snapshot

	id := sessionFrom(ctx)
	err := store.ErrNotFound
	if id != "" {
		err = s.store.Update(ctx, id, func(sess *game.Session) error {
			sess.Start()
			snap = sess.Snapshot()
			return nil
		})
	}
	if errors.Is(err, store.ErrNotFound) {
		snap, err = s.newSession(ctx)
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("start session")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}

	tok, exp, err := s.tokens.sign(snap.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)

	hlog.FromRequest(r).Info().Str("session", snap.ID).Str("first", snap.Board[0].ID).Msg("run started")
	_ = json.NewEncoder(w).Encode(startRes{Token: tok, Game: s.view(snap)})
}

func (s *Server) newSession(ctx context.Context) (game.Snapshot, error) {
	sess, err := game.NewSession(s.catalog, game.WithSource(lockedSource{s}), game.WithClock(s.now))
	if err != nil {
		return game.Snapshot{}, err
	}
	sess.Start()
	if err := s.store.Save(ctx, sess); err != nil {
		return game.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// handleSelect applies one pick to the caller's session.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ctx := r.Context()
	id := sessionFrom(ctx)

	var (
		out  game.Outcome
		snap game.Snapshot
	)
	err := s.store.Update(ctx, id, func(sess *game.Session) error {
		var err error
		out, err = sess.Select(req.ID)
		snap = sess.Snapshot()
		return err
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "no_session")
		return
	case errors.Is(err, game.ErrUnknownItem):
		writeError(w, http.StatusBadRequest, "unknown_treasure")
		return
	case errors.Is(err, game.ErrNotOnBoard):
		writeError(w, http.StatusBadRequest, "not_on_board")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("select")
		writeError(w, http.StatusInternalServerError, "select_failed")
		return
	}

	logger := hlog.FromRequest(r)
	logger.Debug().Str("session", id).Str("pick", req.ID).Str("outcome", string(out)).Int("score", snap.Score.Current).Msg("pick")

	if out == game.OutcomeGameOver || out == game.OutcomeVictory {
		logger.Info().Str("session", id).Str("outcome", string(out)).Int("score", snap.Score.Current).Int("best", snap.Score.Best).Msg("run finished")
		s.recordRun(ctx, snap)
	}
	_ = json.NewEncoder(w).Encode(selectRes{Outcome: out, Ignored: out == game.OutcomeIgnored, Game: s.view(snap)})
}

// handleGet returns the caller's current session state.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), sessionFrom(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no_session")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(s.view(snap))
}

// view decorates a snapshot for rendering.
func (s *Server) view(snap game.Snapshot) gameView {
	v := gameView{
		Snapshot: snap,
		Columns:  game.GridColumns(len(snap.Board)),
	}
	if snap.State.Terminal() {
		v.Title = game.Title(snap.State)
		v.RestartLabel = game.RestartLabel(snap.State)
	}
	return v
}

// ------------------------------ EVICTION -----------------------------------

// Sweep deletes sessions idle for longer than the token TTL. A session's
// last activity is never earlier than its last token, so nothing evicted is
// still reachable.
func (s *Server) Sweep(ctx context.Context) (int, error) {
	ids, err := s.store.Idle(ctx, s.now().Add(-s.tokens.ttl))
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// Janitor runs Sweep every interval until ctx is done.
func (s *Server) Janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int("evicted", n).Msg("swept idle sessions")
			}
		}
	}
}

// recordRun appends a finished run to the log. Best effort.
func (s *Server) recordRun(ctx context.Context, snap game.Snapshot) {
	if s.runs == nil {
		return
	}
	err := s.runs.Record(ctx, runs.Run{
		SessionID:   snap.ID,
		Outcome:     snap.State,
		Score:       snap.Score.Current,
		CatalogSize: snap.CatalogCount,
		StartedAt:   snap.StartedAt,
		FinishedAt:  s.now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session", snap.ID).Msg("record run")
	}
}

// lockedSource serializes draws on the server's shared Source.
type lockedSource struct{ s *Server }

func (l lockedSource) IntN(n int) int {
	l.s.srcMu.Lock()
	defer l.s.srcMu.Unlock()
	return l.s.src.IntN(n)
}
