// internal/game/messages.go
//
// End-of-run presentation helpers.
// Responsibilities:
//   - Bucket a final score by the share of the catalog collected.
//   - Pick a pirate line from the bucket's pool (fixed line on victory).
//   - Titles, restart labels and grid density for renderers.

package game

import "github.com/robalobadob/tidal-recall/internal/shuffle"

// Bucket groups a final score by the share of the catalog collected.
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

const victoryMessage = "Ye've found every single treasure in the deep! The ocean has no more secrets for ye!"

var messagePools = map[Bucket][]string{
	BucketLow: {
		"Arr, a bilge rat could do better than that!",
		"Ye be a landlubber if I ever saw one!",
		"Avast! Me grandmother finds more treasure in her sleep!",
		"Scupper that! Ye barely dipped your toes in the water!",
		"Shiver me timbers, that was a short voyage!",
	},
	BucketMedium: {
		"Not bad, sailor. Ye've got a decent eye for loot!",
		"A fine haul, but there be more gold in them depths!",
		"Ye've got the makings of a true pirate, keep at it!",
		"Steady as she goes! Ye're finding your sea legs.",
		"Blimey! A respectable chest of treasures ye found.",
	},
	BucketHigh: {
		"Splice the mainbrace! Ye're a legend of the seven seas!",
		"Great barnacles! That's a haul fit for a King!",
		"Ye've cleaned out the ocean floor, ye salty dog!",
		"Arr, the legends weren't lyin' about your sharp eyes!",
		"By Poseidon's beard! A master of the tides ye be!",
	},
}

// ScoreBucket classifies score out of max: above 0.7 is high, above 0.3 is
// medium, anything else low. Both thresholds are exclusive.
func ScoreBucket(score, max int) Bucket {
	if max <= 0 {
		return BucketLow
	}
	ratio := float64(score) / float64(max)
	switch {
	case ratio > 0.7:
		return BucketHigh
	case ratio > 0.3:
		return BucketMedium
	default:
		return BucketLow
	}
}

// Message returns the end-of-run line for a terminal state, or "" otherwise.
func Message(src shuffle.Source, st State, score, max int) string {
	switch st {
	case StateVictory:
		return victoryMessage
	case StateGameOver:
		msg, _ := shuffle.Pick(src, messagePools[ScoreBucket(score, max)])
		return msg
	default:
		return ""
	}
}

// Title is the headline shown over a finished run.
func Title(st State) string {
	switch st {
	case StateVictory:
		return "Treasure Master!"
	case StateGameOver:
		return "Game Over!"
	}
	return ""
}

// RestartLabel is the call to action for starting the next run.
func RestartLabel(st State) string {
	if st == StateVictory {
		return "Play Again"
	}
	return "Try Again"
}

// GridColumns suggests how many columns to lay a board of n treasures out in.
func GridColumns(n int) int {
	switch {
	case n <= 4:
		return 2
	case n <= 9:
		return 3
	case n <= 16:
		return 4
	case n <= 25:
		return 5
	default:
		return 6
	}
}
