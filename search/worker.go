// Package search implements the descend-expand-playout-backpropagate
// worker loop and the budget-driven search controller, grounded on the
// teacher's pkg/mcts/search.go (Search/Selection) and pkg/mcts/limiter.go
// (Limiter/Limits), adapted from the teacher's generic NodeBase/
// GameOperations machinery to this module's concrete board.Board and
// tree.Tree arena.
package search

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/ownermap"
	"github.com/stonetree/engine/playout"
	"github.com/stonetree/engine/prior"
	"github.com/stonetree/engine/prng"
	"github.com/stonetree/engine/selection"
	"github.com/stonetree/engine/tree"
)

// arenaFullOnce guards the single warning log emitted the first time
// any worker observes tree.ErrArenaFull — arena exhaustion is a
// tree-wide condition many workers can hit at once, and logging it
// once per process says everything repeating it would.
var arenaFullOnce sync.Once

// ThreadModel selects how multiple workers cooperate over a search,
// per spec.md §4.7/§7.
type ThreadModel int

const (
	// ThreadModelRoot gives every worker its own tree, merged at the
	// end (Tree.Merge/Normalize).
	ThreadModelRoot ThreadModel = iota
	// ThreadModelTree has every worker share one tree with no virtual
	// loss — acceptable only because collisions are rare at low
	// thread counts.
	ThreadModelTree
	// ThreadModelTreeVL is ThreadModelTree plus virtual loss, the
	// default model (DefaultConfig, DefaultWorkerConfig).
	ThreadModelTreeVL
)

// WorkerConfig tunes one worker's behavior.
type WorkerConfig struct {
	// ExpandThreshold is the minimum number of real playouts a leaf
	// must accumulate before a worker will request its expansion —
	// mirrors the teacher's "node.Stats.RealVisits() > 0" gate.
	ExpandThreshold int32
	Model           ThreadModel
}

// DefaultWorkerConfig expands a leaf after its first playout, under
// tree-parallelism with virtual loss.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{ExpandThreshold: 1, Model: ThreadModelTreeVL}
}

// Worker runs the search loop against a shared tree.Tree. One Worker
// per goroutine; each owns its own prng.Source, exactly like the
// teacher's per-goroutine math/rand.Rand.
type Worker struct {
	id     int
	cfg    WorkerConfig
	tr     *tree.Tree
	policy selection.Policy
	runner *playout.Runner
	seeder *prior.Seeder
	owners *ownermap.Map
	rng    *prng.Source

	collisions *atomic.Int64
	games      atomic.Int64
}

// NewWorker builds a worker over a shared tree. collisions, when
// non-nil, is shared across every worker of a search so the
// controller can report total collision count.
func NewWorker(id int, cfg WorkerConfig, tr *tree.Tree, policy selection.Policy, runner *playout.Runner, seeder *prior.Seeder, owners *ownermap.Map, rng *prng.Source, collisions *atomic.Int64) *Worker {
	return &Worker{id: id, cfg: cfg, tr: tr, policy: policy, runner: runner, seeder: seeder, owners: owners, rng: rng, collisions: collisions}
}

// GamesPlayed reports how many playouts this worker has completed.
func (w *Worker) GamesPlayed() int64 { return w.games.Load() }

// Step runs one descend-expand-playout-backpropagate cycle starting
// from rootBoard (never mutated — Step works on rootBoard.Copy()).
// Returns the depth reached.
func (w *Worker) Step(rootBoard board.Board) int {
	b := rootBoard.Copy()
	node := w.tr.Root()
	depth := 0
	withVL := w.cfg.Model == ThreadModelTreeVL

	for {
		n := w.tr.NodeAt(node)
		if !n.Expanded() || n.Terminal() {
			break
		}
		child := w.policy.Select(w.tr, node, withVL)
		if child == tree.NilHandle {
			break
		}
		b.Play(w.tr.NodeAt(child).Coord)
		node = child
		depth++
	}

	leaf := w.tr.NodeAt(node)
	if !leaf.Terminal() && leaf.MC.RealPlayouts() >= w.cfg.ExpandThreshold {
		w.tryExpand(b, node, int16(depth+1))

		leaf = w.tr.NodeAt(node)
		if leaf.Expanded() && !leaf.Terminal() {
			if child := w.policy.Select(w.tr, node, withVL); child != tree.NilHandle {
				b.Play(w.tr.NodeAt(child).Coord)
				node = child
				depth++
			}
		}
	}

	// A node's value is the win rate of the side that played into it,
	// which is the opponent of the side to move at the leaf.
	leafMover := b.ToMove().Other()
	result := w.runner.Play(w.rng, b, w.owners)
	outcome := valueFor(leafMover, result.ResultForBlack)
	w.policy.Backpropagate(w.tr, node, outcome, withVL, result.Amaf)

	w.tr.ObserveDepth(int32(depth))
	w.games.Add(1)
	return depth
}

// tryExpand requests expansion of node, generating legal moves from b
// (which reflects node's position). If another worker already holds
// is_expanding, it counts the collision and returns without waiting,
// so this step plays out from the unexpanded leaf — matching the
// teacher's Selection collision-count bookkeeping.
func (w *Worker) tryExpand(b board.Board, node tree.Handle, depth int16) {
	n := w.tr.NodeAt(node)
	if !n.TryBeginExpand() {
		if n.Expanding() && w.collisions != nil {
			w.collisions.Add(1)
		}
		return
	}

	moves := legalMoves(b)
	toPlay := b.ToMove()
	err := w.tr.Expand(node, moves, depth, func(children []*tree.Node) {
		if w.seeder != nil {
			w.seeder.Seed(b, toPlay, moves, children)
		}
	})
	if err != nil {
		wrapped := errors.Wrap(err, "search: worker: expand")
		arenaFullOnce.Do(func() {
			klog.Warningf("%v; further occurrences are not logged", wrapped)
		})
	}
}

// legalMoves enumerates every legal move for b's side to move,
// including the pass.
func legalMoves(b board.Board) []board.Move {
	toPlay := b.ToMove()
	empties := b.Empties()
	moves := make([]board.Move, 0, len(empties)+1)
	for _, p := range empties {
		m := board.Move{Point: p, Colour: toPlay}
		if b.IsLegal(m) {
			moves = append(moves, m)
		}
	}
	moves = append(moves, board.PassMove(toPlay))
	return moves
}

// valueFor converts a black-perspective result into a [0,1] outcome
// from colour's perspective: 1 is a win for colour, 0 a loss, 0.5 a
// draw.
func valueFor(colour board.Colour, resultForBlack int) float64 {
	blackValue := (float64(resultForBlack) + 1) / 2
	if colour == board.Black {
		return blackValue
	}
	return 1 - blackValue
}
