// Package probdist implements the Fenwick-tree-backed weighted-pick
// structure the Elo playout policy uses to sample moves. No pack
// example carries a binary-indexed tree implementation, so this is
// hand-written against the classic prefix-sum recurrence rather than
// adapted from a dependency (see DESIGN.md).
package probdist

import "github.com/chewxy/math32"

// Fenwick is a binary-indexed tree over non-negative float32 weights,
// indexed 0..n-1. Set is O(log n), Total is O(1), Pick is O(log n).
type Fenwick struct {
	tree  []float32 // 1-based internal BIT storage, len == n+1
	raw   []float32 // raw weight per index, for exact Set/overwrite semantics
	total float32
}

// New allocates a Fenwick tree of length n, all weights zero.
func New(n int) *Fenwick {
	return &Fenwick{
		tree: make([]float32, n+1),
		raw:  make([]float32, n),
	}
}

// Len returns the number of indices this tree covers.
func (f *Fenwick) Len() int { return len(f.raw) }

// Set assigns weight w to index i, replacing whatever weight it held.
// w must be finite and non-negative; callers are expected to clamp
// non-finite gamma products to 0 before calling Set.
func (f *Fenwick) Set(i int, w float32) {
	delta := w - f.raw[i]
	if delta == 0 {
		return
	}
	f.raw[i] = w
	f.total += delta
	for idx := i + 1; idx < len(f.tree); idx += idx & (-idx) {
		f.tree[idx] += delta
	}
}

// Get returns the current weight at index i.
func (f *Fenwick) Get(i int) float32 { return f.raw[i] }

// Total returns the sum of all weights, in O(1).
func (f *Fenwick) Total() float32 { return f.total }

// prefixSum returns sum of raw[0..i] inclusive, 0-based i.
func (f *Fenwick) prefixSum(i int) float32 {
	var sum float32
	for idx := i + 1; idx > 0; idx -= idx & (-idx) {
		sum += f.tree[idx]
	}
	return sum
}

// Pick draws index i with probability w[i]/Total(), using draw as the
// uniform sample in [0, Total()) — typically draw = rng.Float32() *
// Total(). Pick is deterministic in draw: the same draw always
// resolves to the same index. Returns -1 if Total() == 0.
func (f *Fenwick) Pick(draw float32) int {
	if f.total <= 0 || math32.IsNaN(draw) {
		return -1
	}
	if draw < 0 {
		draw = 0
	}
	if draw >= f.total {
		draw = prevFloat32(f.total)
	}

	// Standard BIT "find by prefix sum" descent: walk down from the
	// highest power of two not exceeding len(tree).
	idx := 0
	remaining := draw
	highBit := highestPowerOfTwo(len(f.tree) - 1)
	for bit := highBit; bit > 0; bit >>= 1 {
		next := idx + bit
		if next < len(f.tree) && f.tree[next] <= remaining {
			idx = next
			remaining -= f.tree[next]
		}
	}
	if idx >= len(f.raw) {
		idx = len(f.raw) - 1
	}
	return idx
}

// prevFloat32 returns the largest representable float32 strictly less
// than x, for x > 0. Used to pull an out-of-range draw back inside
// [0, total).
func prevFloat32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return math32.Float32frombits(math32.Float32bits(x) - 1)
}

func highestPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// Reset zeroes every weight without reallocating the backing arrays.
func (f *Fenwick) Reset() {
	for i := range f.tree {
		f.tree[i] = 0
	}
	for i := range f.raw {
		f.raw[i] = 0
	}
	f.total = 0
}
