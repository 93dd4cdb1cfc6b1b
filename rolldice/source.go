package rolldice

import (
	crand "crypto/rand"
	"math/rand/v2"
)

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource draws from the runtime-seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// NewSource returns a Source seeded from crypto/rand. If the system entropy
// source is unavailable it falls back to the runtime-seeded generator.
func NewSource() Source {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return globalSource{}
	}
	return rand.New(rand.NewChaCha8(seed))
}

// NewSeededSource returns a reproducible Source for the given seed.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
