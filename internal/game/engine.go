// internal/game/engine.go
//
// Core game engine for a single Tidal Recall session.
// Responsibilities:
//   - Start (or restart) a run with one random treasure on the board.
//   - Apply picks: new treasure → score + next board; repeat → game over.
//   - Detect victory once every treasure in the catalog is collected.
//   - Keep the best streak across restarts of the same session.
//   - Draw the end-of-run line once, as part of the terminal transition.
//
// Notes:
//   - A Session is not safe for concurrent use. Callers serialize events
//     (see store.Store.Update).
//   - Every transition is computed into locals and committed at the end, so
//     no half-applied state is ever visible.
//   - Randomness comes from an injected shuffle.Source.
package game

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/tidal-recall/internal/shuffle"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

var (
	ErrEmptyCatalog = errors.New("game: catalog is empty")
	ErrUnknownItem  = errors.New("game: unknown treasure")
	ErrNotOnBoard   = errors.New("game: treasure is not on the board")
)

// Session owns the state of one player's game.
type Session struct {
	id        string
	catalog   Catalog
	src       shuffle.Source
	state     State
	score     ScoreRecord
	collected map[string]struct{}
	board     []treasures.Item
	message   string
	startedAt time.Time
	touched   time.Time
	now       func() time.Time
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithSource replaces the default crypto-backed randomness.
func WithSource(src shuffle.Source) Option {
	return func(s *Session) { s.src = src }
}

// WithID sets the session identifier instead of a generated uuid.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithClock overrides time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session in StateStart.
func NewSession(c Catalog, opts ...Option) (*Session, error) {
	if c == nil || c.Count() == 0 {
		return nil, ErrEmptyCatalog
	}
	s := &Session{
		id:        uuid.NewString(),
		catalog:   c,
		src:       shuffle.Crypto(),
		state:     StateStart,
		collected: map[string]struct{}{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start resets the run and deals the first board. Valid from any state;
// the best score survives.
func (s *Session) Start() {
	first, _ := shuffle.Pick(s.src, s.catalog.All())

	s.score.Current = 0
	s.collected = map[string]struct{}{}
	s.board = []treasures.Item{first}
	s.message = ""
	s.startedAt = s.now()
	s.touched = s.startedAt
	s.state = StatePlaying
}

// Select applies the player's pick of treasure id.
//
// Outside StatePlaying the pick is ignored. Ids that are not in the catalog,
// or not on the current board, are rejected with an error and leave the
// session untouched.
func (s *Session) Select(id string) (Outcome, error) {
	if s.state != StatePlaying {
		return OutcomeIgnored, nil
	}
	if !s.catalog.Contains(id) {
		return OutcomeIgnored, ErrUnknownItem
	}
	if !s.onBoard(id) {
		return OutcomeIgnored, ErrNotOnBoard
	}

	if _, seen := s.collected[id]; seen {
		msg := Message(s.src, StateGameOver, s.score.Current, s.catalog.Count())
		s.state, s.message, s.touched = StateGameOver, msg, s.now()
		return OutcomeGameOver, nil
	}

	score := s.score
	score.Current++
	if score.Current > score.Best {
		score.Best = score.Current
	}
	collected := make(map[string]struct{}, len(s.collected)+1)
	for k := range s.collected {
		collected[k] = struct{}{}
	}
	collected[id] = struct{}{}

	if len(collected) >= s.catalog.Count() {
		s.score, s.collected, s.state = score, collected, StateVictory
		s.message, s.touched = victoryMessage, s.now()
		return OutcomeVictory, nil
	}

	board, err := NextRound(s.src, collected, s.catalog.All())
	if err != nil {
		// Unreachable while collected ⊆ catalog: victory is checked above.
		return OutcomeIgnored, err
	}
	s.score, s.collected, s.board = score, collected, board
	s.touched = s.now()
	return OutcomeContinue, nil
}

func (s *Session) onBoard(id string) bool {
	for _, it := range s.board {
		if it.ID == id {
			return true
		}
	}
	return false
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Score returns the current and best streak.
func (s *Session) Score() ScoreRecord { return s.score }

// Board returns a copy of the treasures currently shown.
func (s *Session) Board() []treasures.Item {
	out := make([]treasures.Item, len(s.board))
	copy(out, s.board)
	return out
}

// Collected reports whether id has been collected in the current run.
func (s *Session) Collected(id string) bool {
	_, ok := s.collected[id]
	return ok
}

// CollectedCount returns the size of the collected set.
func (s *Session) CollectedCount() int { return len(s.collected) }

// CatalogCount returns N, the number of treasures needed for victory.
func (s *Session) CatalogCount() int { return s.catalog.Count() }

// Progress returns the fraction of the catalog collected, in [0, 1].
func (s *Session) Progress() float64 {
	return float64(len(s.collected)) / float64(s.catalog.Count())
}

// Message returns the end-of-run line, or "" while the run is live.
func (s *Session) Message() string { return s.message }

// LastActive returns when the session last started a run or accepted a pick.
// The zero time means it never started.
func (s *Session) LastActive() time.Time { return s.touched }

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:             s.id,
		State:          s.state,
		Score:          s.score,
		Board:          s.Board(),
		CollectedCount: len(s.collected),
		CatalogCount:   s.catalog.Count(),
		Progress:       s.Progress(),
		Message:        s.message,
		StartedAt:      s.startedAt,
	}
}
