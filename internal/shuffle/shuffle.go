// internal/shuffle/shuffle.go
//
// Order-randomizing helpers shared by the round generator and the
// end-of-round message picker.
//
// Responsibilities:
//   - Fisher–Yates shuffle that returns a new slice (input is never mutated).
//   - Uniform single-element pick.
//   - Pluggable randomness (Source) so tests can drive exact sequences.
//
// Sources:
//   - Crypto(): crypto/rand via rand.Int, which uses rejection sampling,
//     so index draws carry no modulo bias.
//   - Seeded(seed): math/rand/v2 PCG, reproducible across runs.

package shuffle

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source yields uniform integers in [0, n). n is always > 0 when called.
type Source interface {
	IntN(n int) int
}

// Shuffle returns a uniformly random permutation of seq as a new slice.
//
// Standard Fisher–Yates: walk i from the last index down to 1, draw j in
// [0, i] inclusive and swap positions i and j.
func Shuffle[T any](src Source, seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pick returns one element of seq chosen uniformly at random.
// ok is false when seq is empty.
func Pick[T any](src Source, seq []T) (v T, ok bool) {
	if len(seq) == 0 {
		return v, false
	}
	return seq[src.IntN(len(seq))], true
}

// cryptoSource draws from the OS CSPRNG.
type cryptoSource struct{}

// Crypto returns the default, non-reproducible Source.
func Crypto() Source { return cryptoSource{} }

func (cryptoSource) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic("shuffle: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// seededSource wraps a PCG generator.
type seededSource struct {
	r *mrand.Rand
}

// Seeded returns a reproducible Source. Not safe for concurrent use.
func Seeded(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	return s.r.IntN(n)
}
