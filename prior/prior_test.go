package prior

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/tree"
)

func expandChildren(tr *tree.Tree, parent tree.Handle, points ...board.Point) []board.Move {
	moves := make([]board.Move, len(points))
	for i, p := range points {
		moves[i] = board.Move{Point: p, Colour: board.Black}
	}
	if !tr.NodeAt(parent).TryBeginExpand() {
		panic("already expanding")
	}
	if err := tr.Expand(parent, moves, tr.NodeAt(parent).Depth+1, nil); err != nil {
		panic(err)
	}
	return moves
}

func TestSeedAppliesEvenGamePrior(t *testing.T) {
	b := testboard.New(5)
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	moves := expandChildren(tr, root, 1, 2)

	s := New(Config{EvenEqex: 4}, nil, nil)
	s.Seed(b, board.Black, moves, nodesOf(tr, root))

	for _, h := range tr.Children(root) {
		assert.EqualValues(t, 4, tr.NodeAt(h).MC.Playouts())
		assert.InDelta(t, 0.5, tr.NodeAt(h).MC.Value(), 1e-9)
	}
}

func TestSeedEyeFillPenalty(t *testing.T) {
	b := testboard.New(3)
	// surround point 4 (centre) with black stones to make it an eye.
	for _, p := range []board.Point{1, 3, 5, 7} {
		b.Play(board.Move{Point: p, Colour: board.Black})
	}

	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	moves := expandChildren(tr, root, 4)

	s := New(Config{EvenEqex: 2, EyeFillEqex: 10}, nil, nil)
	s.Seed(b, board.Black, moves, nodesOf(tr, root))

	h := tr.Children(root)[0]
	assert.Less(t, tr.NodeAt(h).MC.Value(), 0.5)
}

func nodesOf(tr *tree.Tree, parent tree.Handle) []*tree.Node {
	kids := tr.Children(parent)
	out := make([]*tree.Node, len(kids))
	for i, h := range kids {
		out[i] = tr.NodeAt(h)
	}
	return out
}
