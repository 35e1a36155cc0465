// internal/game/round.go
//
// Board generation between picks.
// Responsibilities:
//   - Keep every collected treasure on the board.
//   - Add exactly one uncollected treasure, chosen uniformly.
//   - Shuffle the result so position gives nothing away.

package game

import (
	"errors"

	"github.com/robalobadob/tidal-recall/internal/shuffle"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

// ErrNoneAvailable is returned by NextRound when every treasure is already
// collected. Callers must check for victory first.
var ErrNoneAvailable = errors.New("game: no uncollected treasure left")

// NextRound builds the board for the next round: every collected treasure
// plus exactly one uncollected treasure, in random order.
//
// collected must be a subset of catalog ids.
func NextRound(src shuffle.Source, collected map[string]struct{}, catalog []treasures.Item) ([]treasures.Item, error) {
	have := make([]treasures.Item, 0, len(collected)+1)
	var available []treasures.Item
	for _, it := range catalog {
		if _, ok := collected[it.ID]; ok {
			have = append(have, it)
		} else {
			available = append(available, it)
		}
	}

	next, ok := shuffle.Pick(src, available)
	if !ok {
		return nil, ErrNoneAvailable
	}
	return shuffle.Shuffle(src, append(have, next)), nil
}
