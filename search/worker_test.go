package search

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/ownermap"
	"github.com/stonetree/engine/playout"
	"github.com/stonetree/engine/prior"
	"github.com/stonetree/engine/prng"
	"github.com/stonetree/engine/selection"
	"github.com/stonetree/engine/tree"
)

func lastMoverScorer(b board.Board) (int, int) {
	switch b.LastMove().Colour {
	case board.Black:
		return 1, 1
	case board.White:
		return -1, 1
	default:
		return 0, 0
	}
}

func newTestWorker(tr *tree.Tree) *Worker {
	policy := selection.NewUCB1(1.4)
	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	runner := playout.New(playout.Config{GameLen: 30}, eloPolicy, lastMoverScorer, nil)
	seeder := prior.New(prior.DefaultConfig(), nil, nil)
	owners := ownermap.New(5)
	rng := prng.NewSeeded(99)
	return NewWorker(0, DefaultWorkerConfig(), tr, policy, runner, seeder, owners, rng, nil)
}

func TestStepExpandsRootOnceItHasAPlayout(t *testing.T) {
	tr := tree.New(tree.Config{Capacity: 64}, board.Black)
	w := newTestWorker(tr)
	b := testboard.New(5)

	w.Step(b)
	assert.False(t, tr.NodeAt(tr.Root()).Expanded(), "root needs a real playout before it is a candidate for expansion")
	assert.EqualValues(t, 1, tr.NodeAt(tr.Root()).MC.Playouts())

	w.Step(b)
	assert.True(t, tr.NodeAt(tr.Root()).Expanded())
}

func TestStepGrowsTreeOverManyCalls(t *testing.T) {
	tr := tree.New(tree.Config{Capacity: 4096}, board.Black)
	w := newTestWorker(tr)
	b := testboard.New(5)

	for i := 0; i < 50; i++ {
		w.Step(b)
	}
	require.True(t, tr.NodeAt(tr.Root()).Expanded())
	assert.Greater(t, tr.Size(), 1)
	assert.EqualValues(t, 50, tr.NodeAt(tr.Root()).MC.Playouts())
}

func TestCollisionCounterIncrementsUnderContention(t *testing.T) {
	tr := tree.New(tree.Config{Capacity: 4096}, board.Black)
	var collisions atomic.Int64
	policy := selection.NewUCB1(1.4)
	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	runner := playout.New(playout.Config{GameLen: 10}, eloPolicy, lastMoverScorer, nil)
	seeder := prior.New(prior.DefaultConfig(), nil, nil)
	owners := ownermap.New(5)

	workers := make([]*Worker, 4)
	for i := range workers {
		workers[i] = NewWorker(i, DefaultWorkerConfig(), tr, policy, runner, seeder, owners, prng.NewSeeded(int64(i)), &collisions)
	}

	var wg sync.WaitGroup
	wg.Add(len(workers))
	b := testboard.New(5)
	for _, w := range workers {
		go func(w *Worker) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				w.Step(b)
			}
		}(w)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, tr.Size(), 1)
}
