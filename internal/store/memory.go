// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live game sessions for the lifetime of the process.
//
// Characteristics:
//   - Stores *game.Session values keyed by session ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs the mutation under the write lock, so each event on a
//     session is handled to completion before the next one starts.
//   - Idle lists sessions inactive since a cutoff so the server can evict them.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/tidal-recall/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get returns a consistent snapshot of the session with the given ID.
	Get(ctx context.Context, id string) (game.Snapshot, error)

	// Update runs fn against the live session while holding exclusive access.
	// fn must not retain the session after it returns.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete drops a session. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Idle returns the IDs of sessions whose last activity is before cutoff.
	Idle(ctx context.Context, cutoff time.Time) ([]string, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions
	sessions map[string]*game.Session // keyed by Session.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return s.Snapshot(), nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Idle(ctx context.Context, cutoff time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
