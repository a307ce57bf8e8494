package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/clock"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/ownermap"
	"github.com/stonetree/engine/playout"
	"github.com/stonetree/engine/prior"
	"github.com/stonetree/engine/prng"
	"github.com/stonetree/engine/selection"
	"github.com/stonetree/engine/tactics"
	"github.com/stonetree/engine/tree"
)

// State is one of the controller's three lifecycle states, per
// spec.md §4.7's idle → running → stopping → idle cycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Budget bounds one search call along both dimensions spec.md §4.7
// names: playout counts and wall-clock deadlines.
type Budget struct {
	DesiredPlayouts int32
	WorstPlayouts   int32
	DesiredStop     time.Time
	WorstStop       time.Time
}

// Config configures a Controller for one engine instance. The config
// package parses the comma key=value string into a config.Config;
// cmd/stonetreectl's buildEngine copies its fields into this struct.
type Config struct {
	Threads   int
	Model     ThreadModel
	Worker    WorkerConfig
	Playout   playout.Config
	Prior     prior.Config
	Budget    Budget
	PollEvery time.Duration

	// LossThreshold2000/LossThreshold500 implement spec.md §4.7's
	// early-termination shortcuts: stop immediately once the best
	// child has the given playouts and value.
	LossThreshold2000 float64
	LossThreshold500  float64

	// ResignThreshold is the value below which the engine concedes;
	// ResignMinGames is the minimum root playouts required before
	// resignation is considered (guards against resigning off a
	// startled, under-sampled root).
	ResignThreshold float64
	ResignMinGames  int32

	// Seed forces every worker's prng.Source to a deterministic value
	// derived from it (Seed+i for worker i) instead of a clock-seeded
	// one, per spec.md §8's "same seed + threads=1 produces the same
	// move" property. 0 means unseeded (prng.New()'s usual clock seed).
	Seed int64
}

// DefaultConfig matches the values spec.md §4.7 gives literally.
func DefaultConfig() Config {
	return Config{
		Threads:           1,
		Model:             ThreadModelTreeVL,
		Worker:            DefaultWorkerConfig(),
		Playout:           playout.DefaultConfig(),
		Prior:             prior.DefaultConfig(),
		PollEvery:         100 * time.Millisecond,
		LossThreshold2000: 0.85,
		LossThreshold500:  0.95,
		ResignThreshold:   0.10,
		ResignMinGames:    2000,
	}
}

// Controller owns one search's tree, coordinates its worker pool and
// applies the stop conditions, grounded on the teacher's
// MCTS.SearchMultiThreaded/Search (pkg/mcts/search.go) and Limiter
// (pkg/mcts/limiter.go), reworked from the teacher's generic
// GameOperations to this module's concrete elo/playout/prior/selection
// stack.
type Controller struct {
	cfg    Config
	policy selection.Policy
	score  playout.Scorer
	clock  clock.Clock

	mu    sync.Mutex
	cond  *sync.Cond
	state State
	halt  atomic.Bool

	tr         *tree.Tree
	collisions atomic.Int64
	games      atomic.Int64
}

// New builds an idle controller. score is the rule engine's terminal
// scorer (outside this module's concern, per spec.md §4.2).
func New(cfg Config, policy selection.Policy, score playout.Scorer, clk clock.Clock) *Controller {
	c := &Controller{cfg: cfg, policy: policy, score: score, clock: clk}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// State reports the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tree exposes the live search tree — read-only access is safe at any
// time; mutating it concurrently with a running search is not.
func (c *Controller) Tree() *tree.Tree { return c.tr }

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Reset discards any existing tree and starts a fresh one rooted at
// toMove — used when pondering guessed wrong, or before the very
// first search of a game.
func (c *Controller) Reset(cfg tree.Config, toMove board.Colour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tr = tree.New(cfg, toMove)
}

// Promote re-roots the existing tree on the move actually played,
// keeping accumulated statistics for the subtree that survives —
// used both after genmove commits its choice and after a successful
// pondering guess.
func (c *Controller) Promote(move board.Move) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr.Promote(move)
}

// Search runs workers against rootBoard until a stop condition is
// met, then returns the recommended move. rootBoard is never mutated.
func (c *Controller) Search(ctx context.Context, rootBoard board.Board, eloPolicy *elo.Policy, tac tactics.Tactics) board.Move {
	c.setState(StateRunning)
	defer c.setState(StateIdle)
	c.halt.Store(false)
	c.collisions.Store(0)
	c.games.Store(0)

	owners := ownermap.New(rootBoard.Size())
	runner := playout.New(c.cfg.Playout, eloPolicy, c.score, tac)
	seeder := prior.New(c.cfg.Prior, tac, eloPolicy)

	// Under root-parallelism each worker gets its own tree replica,
	// merged back into c.tr once every worker has stopped — no shared
	// state crosses goroutines during the search itself. Under the
	// tree and tree-with-virtual-loss models every worker shares c.tr
	// directly, matching the teacher's mcts.roots slice in
	// SearchMultiThreaded.
	replicas := make([]*tree.Tree, c.cfg.Threads)
	for i := range replicas {
		if c.cfg.Model == ThreadModelRoot && i > 0 {
			replicas[i] = tree.New(c.tr.Config(), c.tr.RootColour())
		} else {
			replicas[i] = c.tr
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := make([]*Worker, c.cfg.Threads)
	for i := 0; i < c.cfg.Threads; i++ {
		var rng *prng.Source
		if c.cfg.Seed != 0 {
			rng = prng.NewSeeded(c.cfg.Seed + int64(i))
		} else {
			rng = prng.New()
		}
		workers[i] = NewWorker(i, c.cfg.Worker, replicas[i], c.policy, runner, seeder, owners, rng, &c.collisions)
	}

	for _, w := range workers {
		w := w
		g.Go(func() error {
			for !c.halt.Load() {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				w.Step(rootBoard)
			}
			return nil
		})
	}

	c.pollUntilStop(ctx)
	c.setState(StateStopping)
	c.halt.Store(true)
	if err := g.Wait(); err != nil {
		klog.Warningf("search: worker error: %v", err)
	}

	var total int64
	for _, w := range workers {
		total += w.GamesPlayed()
	}
	c.games.Store(total)

	if c.cfg.Model == ThreadModelRoot {
		for _, r := range replicas[1:] {
			tree.Merge(c.tr, r)
		}
		c.tr.Normalize(int32(c.cfg.Threads))
	}

	root := c.tr.Root()
	return c.tr.NodeAt(c.policy.Choose(c.tr, root)).Coord
}

// pollUntilStop is the controller's own loop: it sleeps PollEvery and
// checks the budget and early-termination shortcuts against the root,
// matching spec.md §5's "controller sleeps on a short polling
// interval (~100ms) while checking the root".
// Under ThreadModelRoot this watches replica 0 (== c.tr) only, since
// the other replicas are private to their workers until the final
// merge; that single replica's progress is still monotonic and a
// reasonable proxy for "is this taking long enough to stop".
func (c *Controller) pollUntilStop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if c.shouldStop() {
			return
		}
		c.clock.Sleep(c.cfg.PollEvery)
	}
}

func (c *Controller) shouldStop() bool {
	root := c.tr.Root()
	rootPlayouts := c.tr.NodeAt(root).MC.Playouts()

	if c.cfg.Budget.WorstPlayouts > 0 && rootPlayouts >= c.cfg.Budget.WorstPlayouts {
		return true
	}

	choose := c.policy.Choose(c.tr, root)
	if choose == tree.NilHandle {
		return false
	}
	bestNode := c.tr.NodeAt(choose)
	bestPlayouts := bestNode.MC.Playouts()
	bestValue := bestNode.MC.Value()

	if bestPlayouts >= 2000 && bestValue >= c.cfg.LossThreshold2000 {
		return true
	}
	if bestPlayouts >= 500 && bestValue >= c.cfg.LossThreshold500 {
		return true
	}

	if c.cfg.Budget.DesiredPlayouts > 0 && rootPlayouts >= c.cfg.Budget.DesiredPlayouts {
		winner := c.policy.Winner(c.tr, root)
		if winner == choose {
			return true
		}
	}

	if !c.cfg.Budget.DesiredStop.IsZero() && !c.clock.Now().Before(c.cfg.Budget.DesiredStop) {
		winner := c.policy.Winner(c.tr, root)
		if winner == choose {
			return true
		}
	}
	if !c.cfg.Budget.WorstStop.IsZero() && !c.clock.Now().Before(c.cfg.Budget.WorstStop) {
		return true
	}

	return false
}

// ShouldResign reports whether the position is hopeless enough to
// concede: root has accumulated at least ResignMinGames playouts, its
// best child's value is below ResignThreshold, and that best move is
// not itself a pass — passing out of a lost game is never a reason to
// resign instead.
func (c *Controller) ShouldResign() bool {
	root := c.tr.Root()
	n := c.tr.NodeAt(root)
	if n.MC.Playouts() < c.cfg.ResignMinGames {
		return false
	}
	choose := c.policy.Choose(c.tr, root)
	if choose == tree.NilHandle {
		return false
	}
	best := c.tr.NodeAt(choose)
	if best.Coord.Point == board.Pass {
		return false
	}
	return best.MC.Value() < c.cfg.ResignThreshold
}

// Collisions reports the total expansion-collision count observed
// across every worker of the most recent Search call.
func (c *Controller) Collisions() int64 { return c.collisions.Load() }

// Games reports total playouts completed by the most recent Search
// call.
func (c *Controller) Games() int64 { return c.games.Load() }
