package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/tree"
)

func expand(t *tree.Tree, h tree.Handle, points ...board.Point) {
	moves := make([]board.Move, len(points))
	for i, p := range points {
		moves[i] = board.Move{Point: p, Colour: board.Black}
	}
	if !t.NodeAt(h).TryBeginExpand() {
		panic("already expanding")
	}
	if err := t.Expand(h, moves, t.NodeAt(h).Depth+1, nil); err != nil {
		panic(err)
	}
}

type fakeAmaf struct {
	points map[int32]bool
}

func (f fakeAmaf) Contains(p int32, _ bool) bool {
	return f.points[p]
}

func TestUCB1PrefersUnvisitedChild(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1, 2, 3)

	kids := tr.Children(root)
	tr.NodeAt(kids[0]).MC.Add(1.0)
	tr.NodeAt(kids[0]).MC.Add(1.0)

	policy := NewUCB1(1.4)
	selected := policy.Select(tr, root, false)
	assert.NotEqual(t, kids[0], selected, "should prefer an unvisited sibling")
}

func TestUCB1SelectAppliesVirtualLoss(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1)
	kids := tr.Children(root)
	tr.NodeAt(kids[0]).MC.Add(1.0)

	policy := NewUCB1(1.4)
	h := policy.Select(tr, root, true)
	require.Equal(t, kids[0], h)
	assert.EqualValues(t, 1, tr.NodeAt(h).MC.VirtualLoss())
}

func TestUCB1BackpropagateUndoesVirtualLoss(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1)
	kids := tr.Children(root)

	policy := NewUCB1(1.4)
	h := policy.Select(tr, root, true)
	require.Equal(t, kids[0], h)

	policy.Backpropagate(tr, h, 1.0, true, nil)

	assert.EqualValues(t, 0, tr.NodeAt(kids[0]).MC.VirtualLoss())
	assert.EqualValues(t, 1, tr.NodeAt(kids[0]).MC.Playouts())
	assert.InDelta(t, 1.0, tr.NodeAt(kids[0]).MC.Value(), 1e-9)
}

func TestUCB1BackpropagateFlipsPerspective(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1)
	kids := tr.Children(root)

	policy := NewUCB1(1.4)
	policy.Backpropagate(tr, kids[0], 1.0, false, nil)

	assert.InDelta(t, 1.0, tr.NodeAt(kids[0]).MC.Value(), 1e-9)
	assert.InDelta(t, 0.0, tr.NodeAt(root).MC.Value(), 1e-9)
}

func TestUCB1ChooseMostVisited(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1, 2)
	kids := tr.Children(root)
	tr.NodeAt(kids[1]).MC.Add(1.0)
	tr.NodeAt(kids[1]).MC.Add(0.0)

	policy := NewUCB1(1.4)
	assert.Equal(t, kids[1], policy.Choose(tr, root))
}

func TestRaveBlendsAmafIntoEarlyEstimate(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1, 2)
	kids := tr.Children(root)

	tr.NodeAt(kids[0]).MC.Add(0.0)
	tr.NodeAt(kids[0]).AMAF.Add(1.0)
	tr.NodeAt(kids[0]).AMAF.Add(1.0)

	tr.NodeAt(kids[1]).MC.Add(0.0)

	policy := NewUCB1AMAF(0, 1000)
	selected := policy.Select(tr, root, false)
	assert.Equal(t, kids[0], selected, "high AMAF value should win while equiv dominates")
}

func TestRaveBackpropagateCreditsSiblingsInAmaf(t *testing.T) {
	tr := tree.New(tree.Config{}, board.Black)
	root := tr.Root()
	expand(tr, root, 1, 2, 3)
	kids := tr.Children(root)

	amaf := fakeAmaf{points: map[int32]bool{2: true, 3: true}}
	policy := NewUCB1AMAF(1.4, 100)
	policy.Backpropagate(tr, kids[0], 1.0, false, amaf)

	assert.EqualValues(t, 1, tr.NodeAt(kids[1]).AMAF.Playouts())
	assert.EqualValues(t, 1, tr.NodeAt(kids[2]).AMAF.Playouts())
	assert.EqualValues(t, 0, tr.NodeAt(kids[0]).AMAF.Playouts())
}

func TestBetaDecaysTowardZero(t *testing.T) {
	assert.Greater(t, beta(1, 100), beta(1000, 100))
	assert.Equal(t, 0.0, beta(10, 0))
}
