// Package ownermap accumulates, across playouts, which colour ended
// up owning each board point, to answer scoring and dead-group
// queries once enough playouts have run. No pack repo implements this
// directly; the atomic per-cell counter idiom is grounded on
// stats.Pair (itself grounded on the teacher's pkg/mcts/stats.go),
// since both are "many goroutines fold results into one array"
// problems.
package ownermap

import (
	"sync/atomic"

	"github.com/stonetree/engine/board"
)

// Map tallies, per point, how many playouts ended with it black-owned
// vs. white-owned. Safe for concurrent AccumulatePoint calls from multiple
// playout workers.
type Map struct {
	size     int
	black    []atomic.Int32
	white    []atomic.Int32
	playouts atomic.Int32
}

// New builds an owner map sized for a size x size board.
func New(size int) *Map {
	n := size * size
	return &Map{
		size:  size,
		black: make([]atomic.Int32, n),
		white: make([]atomic.Int32, n),
	}
}

// AccumulatePoint credits one point as owned by c for one playout.
// This is the primitive the playout runner calls, once per occupied
// point via board.Board.At, when a playout terminates.
func (m *Map) AccumulatePoint(p board.Point, c board.Colour) {
	switch c {
	case board.Black:
		m.black[p].Add(1)
	case board.White:
		m.white[p].Add(1)
	}
}

// EndPlayout marks one playout's contribution as complete; call once
// per playout after its AccumulatePoint calls.
func (m *Map) EndPlayout() {
	m.playouts.Add(1)
}

// Playouts returns the number of playouts folded in so far.
func (m *Map) Playouts() int {
	return int(m.playouts.Load())
}

// Judge reports the sure owner of point p at threshold thres, using
// judge to interpret the accumulated counts — board.DefaultOwnerJudge
// unless the caller supplies a stricter one.
func (m *Map) Judge(p board.Point, thres float64, judge board.OwnerJudge) (board.Colour, bool) {
	if judge == nil {
		judge = board.DefaultOwnerJudge
	}
	black := int(m.black[p].Load())
	white := int(m.white[p].Load())
	return judge(black, white, m.Playouts(), thres)
}

// GroupIsDead scans every point in the group and reports it dead for
// c if none of its points are sure-owned by c at thres — a cheap
// group death heuristic built on top of the same per-point ownership
// tally used for scoring.
func (m *Map) GroupIsDead(points []board.Point, c board.Colour, thres float64, judge board.OwnerJudge) bool {
	for _, p := range points {
		if owner, sure := m.Judge(p, thres, judge); sure && owner == c {
			return false
		}
	}
	return true
}
