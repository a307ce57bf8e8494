package selection

import (
	"math"

	"github.com/stonetree/engine/tree"
)

// UCB1 selects the child maximising μ + c·√(ln(N_parent)/N_child), the
// default (non-AMAF) selection policy, grounded on the teacher's
// pkg/mcts/ucb.go UCB1.Select/Backpropagate.
type UCB1 struct {
	// ExplorationParam is the UCB1 constant c. Theoretical optimum is
	// √2; the engine default (√2 scaled, per spec.md §4.5) is tuned
	// empirically per game.
	ExplorationParam float64
}

// NewUCB1 builds a UCB1 policy with the given exploration constant.
func NewUCB1(c float64) *UCB1 {
	return &UCB1{ExplorationParam: c}
}

func (u *UCB1) Select(t *tree.Tree, parent tree.Handle, withVirtualLoss bool) tree.Handle {
	kids := children(t, parent)
	if len(kids) == 0 {
		return tree.NilHandle
	}

	parentVisits := t.NodeAt(parent).MC.Playouts()
	lnParent := math.Log(math.Max(1, float64(parentVisits)))

	best := kids[0]
	bestScore := math.Inf(-1)
	for _, h := range kids {
		n := t.NodeAt(h)
		visits := n.MC.RealPlayouts()
		if visits == 0 {
			// A never-visited child has an infinite UCB1 bound —
			// always preferred (spec.md §4.5).
			best = h
			break
		}
		value := n.MC.Value()
		score := value + u.ExplorationParam*math.Sqrt(lnParent/float64(visits))
		if score > bestScore {
			bestScore = score
			best = h
		}
	}

	if withVirtualLoss {
		t.NodeAt(best).MC.AddVirtualLoss()
	}
	return best
}

func (u *UCB1) Backpropagate(t *tree.Tree, leaf tree.Handle, outcome float64, appliedVirtualLoss bool, _ AmafRecord) {
	backpropagateMC(t, leaf, outcome, appliedVirtualLoss)
}

func (u *UCB1) Choose(t *tree.Tree, parent tree.Handle) tree.Handle {
	return chooseMostVisited(t, parent)
}

func (u *UCB1) Winner(t *tree.Tree, parent tree.Handle) tree.Handle {
	return winnerByLCB(t, parent)
}

// backpropagateMC walks from leaf to the root, flipping the outcome's
// perspective at every level (the game is zero-sum: a result credited
// to one side is 1-result to the other). appliedVirtualLoss must
// report whether this descent's Select calls actually applied a
// virtual loss (true only under ThreadModelTreeVL); when they did not,
// every non-root ancestor still needs its playout recorded via Add,
// since there is no outstanding virtual loss to undo. Shared by UCB1
// and UCB1AMAF.
func backpropagateMC(t *tree.Tree, leaf tree.Handle, outcome float64, appliedVirtualLoss bool) {
	h := leaf
	result := outcome
	for h != tree.NilHandle {
		n := t.NodeAt(h)
		switch {
		case n.Parent == tree.NilHandle:
			n.MC.Add(result)
		case appliedVirtualLoss:
			n.MC.UndoVirtualLoss(result)
		default:
			n.MC.Add(result)
		}
		result = 1 - result
		h = n.Parent
	}
}

func chooseMostVisited(t *tree.Tree, parent tree.Handle) tree.Handle {
	kids := children(t, parent)
	if len(kids) == 0 {
		return tree.NilHandle
	}
	best := kids[0]
	bestVisits := t.NodeAt(best).MC.Playouts()
	bestValue := t.NodeAt(best).MC.Value()
	for _, h := range kids[1:] {
		n := t.NodeAt(h)
		visits := n.MC.Playouts()
		value := n.MC.Value()
		switch {
		case visits > bestVisits:
			best, bestVisits, bestValue = h, visits, value
		case visits == bestVisits && value > bestValue:
			best, bestVisits, bestValue = h, visits, value
		case visits == bestVisits && value == bestValue && t.NodeAt(h).Coord.Point < t.NodeAt(best).Coord.Point:
			best, bestVisits, bestValue = h, visits, value
		}
	}
	return best
}

func winnerByLCB(t *tree.Tree, parent tree.Handle) tree.Handle {
	kids := children(t, parent)
	if len(kids) == 0 {
		return tree.NilHandle
	}
	best := kids[0]
	bestLCB := lcb(t.NodeAt(best).MC.Value(), t.NodeAt(best).MC.Playouts())
	for _, h := range kids[1:] {
		n := t.NodeAt(h)
		score := lcb(n.MC.Value(), n.MC.Playouts())
		if score > bestLCB {
			best, bestLCB = h, score
		}
	}
	return best
}
