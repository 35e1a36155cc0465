package runs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/tidal-recall/internal/game"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		st, err := Open(ctx, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = st.Close()
	}
}

func TestRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	st := openTest(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	fixtures := []Run{
		{SessionID: "a", Outcome: game.StateGameOver, Score: 4, CatalogSize: 24, StartedAt: base, FinishedAt: base.Add(1 * time.Minute)},
		{SessionID: "b", Outcome: game.StateVictory, Score: 24, CatalogSize: 24, StartedAt: base, FinishedAt: base.Add(2 * time.Minute)},
		{SessionID: "c", Outcome: game.StateGameOver, Score: 4, CatalogSize: 24, StartedAt: base, FinishedAt: base.Add(3 * time.Minute)},
		{SessionID: "d", Outcome: game.StateGameOver, Score: 9, CatalogSize: 24, StartedAt: base, FinishedAt: base.Add(500 * time.Millisecond)},
	}
	for _, r := range fixtures {
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("Record %s: %v", r.SessionID, err)
		}
	}

	recent, err := st.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recent); got != "cba" {
		t.Fatalf("Recent order = %s, want cba", got)
	}
	if !recent[0].FinishedAt.Equal(base.Add(3*time.Minute)) || recent[0].Outcome != game.StateGameOver {
		t.Fatalf("round-trip mismatch: %+v", recent[0])
	}

	top, err := st.Top(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(top); got != "bdac" {
		t.Fatalf("Top order = %s, want bdac", got)
	}
}

func TestRecordRejectsLiveStates(t *testing.T) {
	st := openTest(t)
	err := st.Record(context.Background(), Run{SessionID: "x", Outcome: game.StatePlaying, CatalogSize: 3})
	if !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("err = %v, want ErrNotTerminal", err)
	}
}

func TestQueryReportsCorruptTimestamps(t *testing.T) {
	ctx := context.Background()
	st := openTest(t)
	_, err := st.db.ExecContext(ctx, `
        INSERT INTO runs (session_id, outcome, score, catalog_size, started_at, finished_at)
        VALUES ('bad', 'gameover', 1, 24, 'yesterday', 'today')`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Recent(ctx, 10); err == nil {
		t.Fatal("Recent returned a row with an unparseable timestamp")
	}
}

func ids(rs []Run) string {
	var s string
	for _, r := range rs {
		s += r.SessionID
	}
	return s
}
