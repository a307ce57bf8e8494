// Package selection implements the UCB1 and UCB1-AMAF (RAVE)
// descent/backpropagation policies of spec.md §4.5, grounded directly
// on the teacher's pkg/mcts/ucb.go and pkg/mcts/rave.go — adapted from
// pointer-chasing NodeBase children to tree.Handle-addressed arena
// nodes, and from a generic zero-sum Result to a plain float64
// outcome in [0,1].
package selection

import (
	"math"

	"github.com/stonetree/engine/tree"
)

// VirtualLoss is the size, in playouts, of the placeholder loss applied
// to a node when it is selected under tree-parallel-with-virtual-loss,
// discouraging other workers from descending the same path before the
// real result is known (spec.md §4.5/§5). stats.Pair.AddVirtualLoss
// always adds exactly one playout and does not read this variable.
var VirtualLoss int32 = 1

// Policy is the descent/backpropagation strategy a search.Controller
// is configured with. Policies are installed once, before workers
// start (spec.md §9's "policies installed before workers start").
type Policy interface {
	// Select picks the child of parent to descend into. parent must
	// have at least one child. withVirtualLoss controls whether the
	// chosen child receives a virtual loss before Select returns —
	// set true under ThreadModelTreeVL, false otherwise.
	Select(t *tree.Tree, parent tree.Handle, withVirtualLoss bool) tree.Handle
	// Backpropagate walks from leaf to the root, crediting outcome
	// (from the perspective of the side that played leaf's move,
	// flipped at every level) to each ancestor's MC
	// statistics, and — for RAVE — crediting AMAF statistics to every
	// sibling whose move appears in amaf. appliedVirtualLoss must match
	// the withVirtualLoss value every Select call along this descent
	// used — only then does each ancestor get its virtual loss undone
	// instead of a plain Add, keeping (AddVirtualLoss, UndoVirtualLoss)
	// paired per node.
	Backpropagate(t *tree.Tree, leaf tree.Handle, outcome float64, appliedVirtualLoss bool, amaf AmafRecord)
	// Choose returns the child with the highest playout count —
	// "the" recommended move, independent of the selection formula
	// used to get there. Ties break by higher value, then lower
	// coord index.
	Choose(t *tree.Tree, parent tree.Handle) tree.Handle
	// Winner returns the child with the highest lower-confidence
	// bound on value; Choose == Winner signals the search may stop.
	Winner(t *tree.Tree, parent tree.Handle) tree.Handle
}

// AmafRecord marks, for each point played during a playout, the first
// colour (if any) to play there — spec.md §4.2's amaf_record.
type AmafRecord interface {
	// Contains reports whether the first play at point p during the
	// recorded playout was by Black (blackToMove true) or by White
	// (blackToMove false).
	Contains(p int32, blackToMove bool) bool
}

func children(t *tree.Tree, parent tree.Handle) []tree.Handle {
	return t.Children(parent)
}

// lcb is the value lower-confidence-bound used by Winner: the value
// minus a margin of 1/√playouts, which vanishes as playouts grow,
// matching the "declare the search may stop" role spec.md §4.5
// assigns Winner. A child with no playouts scores -Inf.
func lcb(value float64, playouts int32) float64 {
	if playouts <= 0 {
		return math.Inf(-1)
	}
	margin := math.Sqrt(1.0 / float64(playouts))
	return value - margin
}
