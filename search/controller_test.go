package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/selection"
	"github.com/stonetree/engine/tree"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time     { return f.now }
func (f *fakeClock) Sleep(time.Duration) { f.now = f.now.Add(10 * time.Millisecond) }

func newController(t *testing.T, model ThreadModel, threads int) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Threads = threads
	cfg.Model = model
	cfg.Budget = Budget{DesiredPlayouts: 20, WorstPlayouts: 200}
	cfg.Worker.Model = model

	c := New(cfg, selection.NewUCB1(1.4), lastMoverScorer, &fakeClock{now: time.Now()})
	c.Reset(tree.Config{Capacity: 8192}, board.Black)
	return c
}

func TestSearchStopsAtDesiredPlayoutsWithMatchingWinner(t *testing.T) {
	c := newController(t, ThreadModelTreeVL, 1)
	b := testboard.New(5)
	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	move := c.Search(ctx, b, eloPolicy, nil)
	assert.NotEqual(t, board.Resign, move.Point)

	root := c.Tree().Root()
	require.GreaterOrEqual(t, c.Tree().NodeAt(root).MC.Playouts(), int32(20))
}

func TestSearchRootParallelMerges(t *testing.T) {
	c := newController(t, ThreadModelRoot, 3)
	b := testboard.New(5)
	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.Search(ctx, b, eloPolicy, nil)
	assert.Greater(t, c.Games(), int64(0))
}

func TestShouldResignFalseBelowMinGames(t *testing.T) {
	c := newController(t, ThreadModelTreeVL, 1)
	assert.False(t, c.ShouldResign())
}

func TestShouldResignFalseWhenBestMoveIsPass(t *testing.T) {
	c := newController(t, ThreadModelTreeVL, 1)
	c.cfg.ResignMinGames = 1
	c.cfg.ResignThreshold = 0.5

	root := c.tr.Root()
	require.True(t, c.tr.NodeAt(root).TryBeginExpand())
	moves := []board.Move{board.PassMove(board.Black)}
	require.NoError(t, c.tr.Expand(root, moves, c.tr.NodeAt(root).Depth+1, nil))

	c.tr.NodeAt(root).MC.Add(0.0)
	kids := c.tr.Children(root)
	c.tr.NodeAt(kids[0]).MC.Add(0.0)

	assert.False(t, c.ShouldResign(), "hopeless position whose best move is a pass must pass, not resign")
}
