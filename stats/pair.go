// Package stats implements the atomic (playouts, value) pair shared by
// a tree node's MC and AMAF statistics, grounded on the teacher's
// NodeStats (pkg/mcts/stats.go): playouts and the compounded outcome
// are each updated with plain atomic ops, and a GetVvl-style paired
// read keeps virtual loss bookkeeping consistent without a lock.
package stats

import "sync/atomic"

// fixedPointScale trades a little precision for lock-free updates: the
// running sum of per-playout values is kept as a fixed-point int64
// scaled by this factor, i.e. with a precision of 10^-6 per playout.
const fixedPointScale = 1e6

// Pair is the atomic (playouts, value) statistic shared by spec.md's
// node.u and node.amaf fields. value is always read back in [0,1]
// (invariant §3); playouts are non-negative.
type Pair struct {
	playouts    atomic.Int32
	virtualLoss atomic.Int32
	sum         atomic.Int64 // fixed-point sum of per-playout values, scale fixedPointScale
}

// Playouts returns the raw playout count, including any outstanding
// virtual loss (use RealPlayouts to exclude it).
func (p *Pair) Playouts() int32 { return p.playouts.Load() }

// VirtualLoss returns the currently outstanding virtual loss.
func (p *Pair) VirtualLoss() int32 { return p.virtualLoss.Load() }

// RealPlayouts returns Playouts() - VirtualLoss(), reading both
// fields together so a concurrent AddVirtualLoss/UndoVirtualLoss can't
// produce a negative result, the same CAS-free retry the teacher's
// GetVvl does.
func (p *Pair) RealPlayouts() int32 {
	for {
		pl := p.playouts.Load()
		vl := p.virtualLoss.Load()
		if vl <= pl {
			return pl - vl
		}
	}
}

// Value returns the running mean outcome, in [0,1]. Value on a
// zero-playout pair returns 0.
func (p *Pair) Value() float64 {
	n := p.playouts.Load()
	if n <= 0 {
		return 0
	}
	return float64(p.sum.Load()) / fixedPointScale / float64(n)
}

// Add records one playout with the given per-playout outcome (from
// the perspective of the side that played this node's move, in
// [0,1]).
func (p *Pair) Add(outcome float64) {
	p.playouts.Add(1)
	p.sum.Add(int64(outcome * fixedPointScale))
}

// AddN records n playouts worth eqexTotal of total outcome weight —
// used by the prior seeder, which merges (eval, eqex) pairs rather
// than individual playouts.
func (p *Pair) AddN(n int32, eqexTotalValue float64) {
	p.playouts.Add(n)
	p.sum.Add(int64(eqexTotalValue * fixedPointScale))
}

// AddVirtualLoss pushes a pessimistic placeholder playout so other
// workers are discouraged from selecting the same path; Playouts()
// increases by 1, Value() tilts toward 0 for this side. Call
// UndoVirtualLoss with the real outcome once the playout completes.
func (p *Pair) AddVirtualLoss() {
	p.playouts.Add(1)
	p.virtualLoss.Add(1)
}

// UndoVirtualLoss removes the placeholder playout added by
// AddVirtualLoss and records the real outcome in its place, so the
// net effect of the pair (AddVirtualLoss, UndoVirtualLoss) is exactly
// Add(outcome).
func (p *Pair) UndoVirtualLoss(outcome float64) {
	p.virtualLoss.Add(-1)
	p.sum.Add(int64(outcome * fixedPointScale))
}

// Merge field-wise sums playouts and outcome mass from other into p —
// used by Tree.Merge under root-parallelisation.
func (p *Pair) Merge(other *Pair) {
	p.playouts.Add(other.playouts.Load())
	p.virtualLoss.Add(other.virtualLoss.Load())
	p.sum.Add(other.sum.Load())
}

// Normalize divides playouts and outcome mass by k, keeping Value()
// unchanged but scaling the statistic's weight — used to keep merged
// trees' variance-adjusted estimates comparable.
func (p *Pair) Normalize(k int32) {
	if k <= 1 {
		return
	}
	p.playouts.Store(p.playouts.Load() / k)
	p.virtualLoss.Store(p.virtualLoss.Load() / k)
	p.sum.Store(p.sum.Load() / int64(k))
}

// Set overwrites playouts/value directly — used by Tree.Load when
// rehydrating a saved book.
func (p *Pair) Set(playouts int32, value float64) {
	p.playouts.Store(playouts)
	p.virtualLoss.Store(0)
	p.sum.Store(int64(value * float64(playouts) * fixedPointScale))
}
