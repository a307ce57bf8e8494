package selection

import (
	"math"

	"github.com/stonetree/engine/tree"
)

// UCB1AMAF is the RAVE selection policy: it blends the UCB1 exploration
// term with an AMAF (all-moves-as-first) value that converges faster
// but is biased, shrinking the AMAF weight toward zero as the node's
// own playout count grows. Grounded on the teacher's pkg/mcts/rave.go.
type UCB1AMAF struct {
	ExplorationParam float64
	// RaveEquivalence is the "equiv" constant in the Silver decay
	// schedule β(n) = sqrt(equiv/(3n+equiv)); larger values trust AMAF
	// statistics longer before favouring real playouts.
	RaveEquivalence float64
}

// NewUCB1AMAF builds a RAVE policy with the given exploration constant
// and RAVE equivalence parameter.
func NewUCB1AMAF(c, equiv float64) *UCB1AMAF {
	return &UCB1AMAF{ExplorationParam: c, RaveEquivalence: equiv}
}

// beta implements the Silver RAVE decay schedule.
func beta(n float64, equiv float64) float64 {
	if equiv <= 0 {
		return 0
	}
	return math.Sqrt(equiv / (3*n + equiv))
}

func (r *UCB1AMAF) Select(t *tree.Tree, parent tree.Handle, withVirtualLoss bool) tree.Handle {
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
			best = h
			break
		}

		mcValue := n.MC.Value()
		exploration := r.ExplorationParam * math.Sqrt(lnParent/float64(visits))

		amafVisits := n.AMAF.Playouts()
		value := mcValue
		if amafVisits > 0 {
			b := beta(float64(visits), r.RaveEquivalence)
			value = (1-b)*mcValue + b*n.AMAF.Value()
		}

		score := value + exploration
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

// Backpropagate updates leaf's MC ancestry as UCB1 does, and
// additionally credits every sibling along the path whose move is
// recorded in amaf — the all-moves-as-first trick that lets a single
// playout inform statistics for moves it never actually reached in
// the tree, at every depth the move could plausibly have been played
// from (spec.md §4.5's RAVE description).
func (r *UCB1AMAF) Backpropagate(t *tree.Tree, leaf tree.Handle, outcome float64, appliedVirtualLoss bool, amaf AmafRecord) {
	backpropagateMC(t, leaf, outcome, appliedVirtualLoss)

	if amaf == nil {
		return
	}

	h := leaf
	result := outcome
	for h != tree.NilHandle {
		n := t.NodeAt(h)
		parent := n.Parent
		if parent != tree.NilHandle {
			toMoveIsBlack := n.Depth%2 == 1
			for _, sib := range t.Children(parent) {
				s := t.NodeAt(sib)
				if amaf.Contains(int32(s.Coord.Point), toMoveIsBlack) {
					s.AMAF.Add(result)
				}
			}
		}
		result = 1 - result
		h = parent
	}
}

func (r *UCB1AMAF) Choose(t *tree.Tree, parent tree.Handle) tree.Handle {
	return chooseMostVisited(t, parent)
}

func (r *UCB1AMAF) Winner(t *tree.Tree, parent tree.Handle) tree.Handle {
	return winnerByLCB(t, parent)
}
