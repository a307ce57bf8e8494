// Package prng provides a fast, thread-local pseudo-random source for
// playouts and selection tie-breaking. Each worker owns one Source —
// never share a Source across goroutines, the same discipline the
// teacher's search loop uses by minting one math/rand.Rand per
// goroutine (pkg/mcts/search.go's Search/doSearch).
package prng

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// Source is a thread-local random source. It is not safe for
// concurrent use; one per worker goroutine.
type Source struct {
	rng *rand.Rand
}

var seedCounter atomic.Int64

// nextSeed mixes wall time with a monotonically increasing counter so
// two Sources created in the same nanosecond still diverge.
func nextSeed() int64 {
	return time.Now().UnixNano() ^ seedCounter.Add(1)<<1
}

// New creates a Source seeded from the process clock.
func New() *Source {
	return NewSeeded(nextSeed())
}

// NewSeeded creates a Source from an explicit seed — used for
// reproducible searches (threads=1, force_seed=N).
func NewSeeded(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform int in [0, n).
func (s *Source) Intn(n int) int { return s.rng.Intn(n) }

// Int31n returns a uniform int32 in [0, n).
func (s *Source) Int31n(n int32) int32 { return s.rng.Int31n(n) }

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Float32 returns a uniform float32 in [0, 1).
func (s *Source) Float32() float32 { return s.rng.Float32() }
