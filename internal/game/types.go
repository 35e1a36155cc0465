// internal/game/types.go
//
// Core type definitions for the Tidal Recall game engine.
// Defines:
//   - State: session lifecycle (start → playing → gameover/victory).
//   - Outcome: what a single Select did.
//   - ScoreRecord: current streak and best streak.
//   - Snapshot: the full read-only view handed to presentation layers.

package game

import (
	"time"

	"github.com/robalobadob/tidal-recall/internal/treasures"
)

// State represents where a session is in its lifecycle.
// Possible values:
//   - "start":    fresh session, never started.
//   - "playing":  a board is up and the player is picking.
//   - "gameover": the player picked a treasure they had already collected.
//   - "victory":  every treasure in the catalog was collected.
type State string

const (
	StateStart    State = "start"
	StatePlaying  State = "playing"
	StateGameOver State = "gameover"
	StateVictory  State = "victory"
)

// Terminal reports whether no further picks are accepted until Start.
func (s State) Terminal() bool { return s == StateGameOver || s == StateVictory }

// Outcome is the result of one Select call.
type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeContinue Outcome = "continue"
	OutcomeGameOver Outcome = "gameover"
	OutcomeVictory  Outcome = "victory"
)

// ScoreRecord holds the current streak and the best streak seen by this session.
type ScoreRecord struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Catalog is the read-only treasure source a session plays against.
// *treasures.Catalog satisfies it.
type Catalog interface {
	All() []treasures.Item
	Count() int
	Contains(id string) bool
}

// Snapshot is a consistent copy of everything a renderer needs.
type Snapshot struct {
	ID             string           `json:"id"`
	State          State            `json:"state"`
	Score          ScoreRecord      `json:"score"`
	Board          []treasures.Item `json:"board"`
	CollectedCount int              `json:"collected"`
	CatalogCount   int              `json:"total"`
	Progress       float64          `json:"progress"`
	Message        string           `json:"message,omitempty"` // set once the run is over
	StartedAt      time.Time        `json:"startedAt"`
}
