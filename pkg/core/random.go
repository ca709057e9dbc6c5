package core

import "pgregory.net/rand"

// Random produces uniform floats in [0, 1). Implementations are not safe
// for concurrent use; each worker owns its own.
type Random interface {
	Float64() float64
}

// NewRandom returns a deterministic generator for the given seed
func NewRandom(seed uint64) Random {
	return rand.New(seed)
}
