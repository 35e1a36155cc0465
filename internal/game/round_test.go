package game

import (
	"errors"
	"testing"

	"github.com/robalobadob/tidal-recall/internal/shuffle"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

func TestNextRoundShape(t *testing.T) {
	cat := []treasures.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	src := shuffle.Seeded(1)
	tests := []struct {
		name      string
		collected []string
	}{
		{"none", nil},
		{"one", []string{"c"}},
		{"most", []string{"a", "b", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := map[string]struct{}{}
			for _, id := range tt.collected {
				set[id] = struct{}{}
			}
			for i := 0; i < 100; i++ {
				board, err := NextRound(src, set, cat)
				if err != nil {
					t.Fatal(err)
				}
				if len(board) != len(set)+1 {
					t.Fatalf("len = %d, want %d", len(board), len(set)+1)
				}
				seen := map[string]bool{}
				fresh := 0
				for _, it := range board {
					if seen[it.ID] {
						t.Fatalf("duplicate %q in %v", it.ID, board)
					}
					seen[it.ID] = true
					if _, ok := set[it.ID]; !ok {
						fresh++
					}
				}
				if fresh != 1 {
					t.Fatalf("%d fresh items in %v, want 1", fresh, board)
				}
				for id := range set {
					if !seen[id] {
						t.Fatalf("collected %q missing from %v", id, board)
					}
				}
			}
		})
	}
}

func TestNextRoundPicksUniformly(t *testing.T) {
	cat := []treasures.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	set := map[string]struct{}{"a": {}}
	src := shuffle.Seeded(77)
	counts := map[string]int{}
	for i := 0; i < 30000; i++ {
		board, _ := NextRound(src, set, cat)
		for _, it := range board {
			if it.ID != "a" {
				counts[it.ID]++
			}
		}
	}
	for _, id := range []string{"b", "c", "d"} {
		if c := counts[id]; c < 9000 || c > 11000 {
			t.Errorf("%s picked %d times, want ~10000", id, c)
		}
	}
}

func TestNextRoundNoneAvailable(t *testing.T) {
	cat := []treasures.Item{{ID: "a"}, {ID: "b"}}
	set := map[string]struct{}{"a": {}, "b": {}}
	if _, err := NextRound(zeros{}, set, cat); !errors.Is(err, ErrNoneAvailable) {
		t.Fatalf("err = %v, want ErrNoneAvailable", err)
	}
}

func TestNextRoundDoesNotMutateCatalog(t *testing.T) {
	cat := []treasures.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	set := map[string]struct{}{"a": {}, "b": {}}
	NextRound(zeros{}, set, cat)
	if cat[0].ID != "a" || cat[1].ID != "b" || cat[2].ID != "c" {
		t.Fatalf("catalog reordered: %v", cat)
	}
}
