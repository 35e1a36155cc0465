package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/tidal-recall/internal/game"
	"github.com/robalobadob/tidal-recall/internal/shuffle"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

func newSession(t *testing.T, id string) *game.Session {
	t.Helper()
	cat, err := treasures.Default()
	if err != nil {
		t.Fatal(err)
	}
	s, err := game.NewSession(cat, game.WithID(id), game.WithSource(shuffle.Seeded(1)))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v", err)
	}
	if err := st.Save(ctx, newSession(t, "s1")); err != nil {
		t.Fatal(err)
	}
	snap, err := st.Get(ctx, "s1")
	if err != nil || snap.ID != "s1" || snap.State != game.StateStart {
		t.Fatalf("Get = %+v, %v", snap, err)
	}
	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	_ = st.Save(ctx, newSession(t, "s1"))

	err := st.Update(ctx, "s1", func(s *game.Session) error {
		s.Start()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	snap, _ := st.Get(ctx, "s1")
	if snap.State != game.StatePlaying || len(snap.Board) != 1 {
		t.Fatalf("snapshot after Update = %+v", snap)
	}

	boom := errors.New("boom")
	if err := st.Update(ctx, "s1", func(*game.Session) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v", err)
	}
	if err := st.Update(ctx, "missing", func(*game.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing = %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := st.Update(cctx, "s1", func(*game.Session) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("Update cancelled = %v", err)
	}
}

func TestUpdateSerializesEvents(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	_ = st.Save(ctx, newSession(t, "s1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, "s1", func(s *game.Session) error {
				s.Start()
				return nil
			})
			_, _ = st.Get(ctx, "s1")
		}()
	}
	wg.Wait()

	snap, _ := st.Get(ctx, "s1")
	if snap.State != game.StatePlaying || len(snap.Board) != 1 || snap.Score.Current != 0 {
		t.Fatalf("final snapshot = %+v", snap)
	}
}

func TestIdle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base

	cat, err := treasures.Default()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"old", "new"} {
		s, err := game.NewSession(cat, game.WithID(id), game.WithClock(func() time.Time { return now }))
		if err != nil {
			t.Fatal(err)
		}
		s.Start()
		_ = st.Save(ctx, s)
		now = now.Add(time.Hour)
	}
	_ = st.Save(ctx, newSession(t, "never")) // never started

	ids, err := st.Idle(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(got) != 2 || !got["old"] || !got["never"] {
		t.Fatalf("Idle = %v, want old and never", ids)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := st.Idle(cctx, base); !errors.Is(err, context.Canceled) {
		t.Fatalf("Idle cancelled = %v", err)
	}
}
