package tree

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/stonetree/engine/board"
)

// ErrArenaFull is returned by Expand when a fast-alloc tree has no
// room left for new children; the caller should mark the node
// non-expandable and keep searching with the tree it already has
// (spec.md §7 resource-exhaustion handling).
var ErrArenaFull = errors.New("tree: node arena exhausted")

// Config selects the arena's allocation strategy and capacity.
type Config struct {
	// FastAlloc pre-sizes a bump-allocated arena of Capacity nodes
	// with no further growth; Capacity == 0 disables fast-alloc and
	// falls back to an unbounded, mutex-guarded growable arena.
	FastAlloc bool
	Capacity  int
}

// Tree owns the node arena, the current root, and the handful of
// pieces of shared state spec.md §3 assigns to the tree rather than
// to individual nodes: root-side colour and a shared komi adjustment.
type Tree struct {
	cfg Config

	mu    sync.Mutex // guards nodes growth in non-fast-alloc mode, and free list access
	nodes []Node
	free  []Handle
	bump  atomic.Int64 // next unused index, fast-alloc mode only

	root       Handle
	rootColour board.Colour
	extraKomi  atomic.Int64 // fixed-point (1e6 scale) shared komi

	size     atomic.Int64
	maxDepth atomic.Int32
}

// New creates a tree with a single root node of the given colour. The
// root is never terminal by construction; callers that know the game
// is already over should call SetTerminal on the returned root handle.
func New(cfg Config, rootColour board.Colour) *Tree {
	t := &Tree{cfg: cfg, rootColour: rootColour}
	if cfg.FastAlloc && cfg.Capacity > 0 {
		t.nodes = make([]Node, cfg.Capacity)
	} else {
		t.nodes = make([]Node, 0, 1024)
	}
	root := t.mustAllocRoot()
	t.root = root
	t.size.Store(1)
	t.NodeAt(root).Parent = NilHandle
	t.NodeAt(root).Sibling = NilHandle
	t.NodeAt(root).Child = NilHandle
	return t
}

// mustAllocRoot allocates slot 0 for the root; the tree is brand new
// so this can never fail even in fast-alloc mode (Capacity is always
// assumed >= 1).
func (t *Tree) mustAllocRoot() Handle {
	h, ok := t.alloc()
	if !ok {
		panic("tree: capacity too small to hold a root node")
	}
	return h
}

// Config returns the configuration the tree was built with — used by
// root-parallelism to build per-worker replica trees with matching
// capacity.
func (t *Tree) Config() Config { return t.cfg }

// Root returns the current root handle.
func (t *Tree) Root() Handle { return t.root }

// RootColour returns the colour the tree was created (or last
// promoted) for.
func (t *Tree) RootColour() board.Colour { return t.rootColour }

// Size returns the number of live nodes in the tree.
func (t *Tree) Size() int64 { return t.size.Load() }

// MaxDepth returns the deepest descent observed so far.
func (t *Tree) MaxDepth() int32 { return t.maxDepth.Load() }

// ObserveDepth records a descent depth for the max-depth progress
// metric; callers pass the depth reached by one worker's descent.
func (t *Tree) ObserveDepth(depth int32) {
	for {
		old := t.maxDepth.Load()
		if depth <= old {
			return
		}
		if t.maxDepth.CompareAndSwap(old, depth) {
			return
		}
	}
}

// ExtraKomi returns the shared dynamic-komi adjustment.
func (t *Tree) ExtraKomi() float64 {
	return float64(t.extraKomi.Load()) / 1e6
}

// SetExtraKomi updates the shared dynamic-komi adjustment.
func (t *Tree) SetExtraKomi(k float64) {
	t.extraKomi.Store(int64(k * 1e6))
}

// NodeAt dereferences a handle. Callers must not retain the pointer
// across a Promote call, which can invalidate slots returned to the
// free list.
func (t *Tree) NodeAt(h Handle) *Node {
	return &t.nodes[h]
}

// alloc returns a fresh handle, either from the free list, from the
// bump cursor (fast-alloc mode), or by growing the backing slice
// (default mode). ok is false only in fast-alloc mode once Capacity is
// exhausted and the free list is empty.
func (t *Tree) alloc() (Handle, bool) {
	t.mu.Lock()
	if len(t.free) > 0 {
		h := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.mu.Unlock()
		*t.NodeAt(h) = Node{Parent: NilHandle, Child: NilHandle, Sibling: NilHandle}
		return h, true
	}
	t.mu.Unlock()

	if t.cfg.FastAlloc && t.cfg.Capacity > 0 {
		idx := t.bump.Add(1) - 1
		if int(idx) >= len(t.nodes) {
			return NilHandle, false
		}
		h := Handle(idx)
		*t.NodeAt(h) = Node{Parent: NilHandle, Child: NilHandle, Sibling: NilHandle}
		return h, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = append(t.nodes, Node{Parent: NilHandle, Child: NilHandle, Sibling: NilHandle})
	return Handle(len(t.nodes) - 1), true
}

// freeSubtree returns every handle reachable from h (h included) to
// the free list. Single-threaded: called only from Promote, after the
// search has stopped.
func (t *Tree) freeSubtree(h Handle) {
	if h == NilHandle {
		return
	}
	n := t.NodeAt(h)
	child := n.Child
	for child != NilHandle {
		next := t.NodeAt(child).Sibling
		t.freeSubtree(child)
		child = next
	}
	t.size.Add(-1)
	t.mu.Lock()
	t.free = append(t.free, h)
	t.mu.Unlock()
}

// Expand enumerates candidate moves into fresh child nodes of parent.
// seed, if non-nil, runs once over the newly allocated (not yet
// published) children — this is where the prior seeder merges its
// heuristic (eval, eqex) pairs before any other worker can observe
// them. Expand returns ErrArenaFull if the arena has no room for all
// of the children (any already allocated are returned to the free
// list); the node is left permanently marked non-expandable by
// AbandonExpand(true) (the sticky flagArenaExhausted bit) so the
// caller can react per spec.md §7 without retrying the same node
// forever.
//
// Expand assumes the caller already verified TryBeginExpand succeeded
// for parent — it does not itself attempt the CAS, so callers that
// lose the race bail out (search.Worker plays out from the unexpanded
// leaf and descends into a child on a later step) instead of
// blocking here.
func (t *Tree) Expand(parent Handle, moves []board.Move, depth int16, seed func(children []*Node)) error {
	p := t.NodeAt(parent)
	if len(moves) == 0 {
		p.SetTerminal(true)
		p.FinishExpand()
		return nil
	}

	children := make([]Handle, 0, len(moves))
	for _, m := range moves {
		h, ok := t.alloc()
		if !ok {
			t.mu.Lock()
			t.free = append(t.free, children...)
			t.mu.Unlock()
			p.AbandonExpand(true)
			return ErrArenaFull
		}
		c := t.NodeAt(h)
		c.Coord = m
		c.Parent = parent
		c.Depth = depth
		children = append(children, h)
	}

	// Link into a singly-linked sibling list, insertion order (first
	// move becomes the list head), before running the seeder so it
	// can iterate children in a stable, predictable order.
	for i := len(children) - 1; i >= 0; i-- {
		c := t.NodeAt(children[i])
		if i == len(children)-1 {
			c.Sibling = NilHandle
		} else {
			c.Sibling = children[i+1]
		}
	}

	if seed != nil {
		nodes := make([]*Node, len(children))
		for i, h := range children {
			nodes[i] = t.NodeAt(h)
		}
		seed(nodes)
	}

	t.size.Add(int64(len(children)))

	// Publish: single-writer write of the child-list head, followed
	// by FinishExpand's atomic store — the release operation every
	// other worker's Expanded()-guarded read acquires against
	// (spec.md §5 children-list publication ordering).
	p.Child = children[0]
	p.FinishExpand()
	return nil
}

// Children returns the handles of parent's children, in insertion
// order. Safe to call once Expanded() is observed true.
func (t *Tree) Children(parent Handle) []Handle {
	var out []Handle
	for c := t.NodeAt(parent).Child; c != NilHandle; c = t.NodeAt(c).Sibling {
		out = append(out, c)
	}
	return out
}

// FindChild returns the handle of parent's child whose Coord equals
// move, or NilHandle if none matches.
func (t *Tree) FindChild(parent Handle, move board.Move) Handle {
	for c := t.NodeAt(parent).Child; c != NilHandle; c = t.NodeAt(c).Sibling {
		if t.NodeAt(c).Coord == move {
			return c
		}
	}
	return NilHandle
}

// Promote re-roots the tree at the child of the current root matching
// move, discarding every sibling subtree (returning their nodes to
// the free list) and bumping the root colour to the opposite side.
// Promote fails — and the caller must build a fresh tree — when move
// doesn't match any child of the current root (spec.md §4.4's
// "unreachable move" case, e.g. the opponent played something this
// tree never considered, or pondering guessed wrong).
func (t *Tree) Promote(move board.Move) error {
	newRoot := t.FindChild(t.root, move)
	if newRoot == NilHandle {
		return errors.Errorf("tree: promote: no child for move %+v", move)
	}

	oldRoot := t.root
	preserved := newRoot

	// Detach the kept child from the old root's sibling list so
	// freeSubtree(oldRoot) doesn't walk into it.
	old := t.NodeAt(oldRoot)
	if old.Child == preserved {
		old.Child = t.NodeAt(preserved).Sibling
	} else {
		for c := old.Child; c != NilHandle; c = t.NodeAt(c).Sibling {
			if t.NodeAt(c).Sibling == preserved {
				t.NodeAt(c).Sibling = t.NodeAt(preserved).Sibling
				break
			}
		}
	}

	t.NodeAt(preserved).Parent = NilHandle
	t.NodeAt(preserved).Sibling = NilHandle
	t.root = preserved
	t.rootColour = t.rootColour.Other()
	t.maxDepth.Store(max32(0, t.maxDepth.Load()-1))

	t.freeSubtree(oldRoot)
	return nil
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Merge field-wise sums dest's statistics with src's, recursing into
// children that share the same Coord on both sides — used only under
// root-parallelisation, where every worker built an independent tree
// from the same starting position. Children are matched by Coord, so
// their order in either tree does not matter. Nodes present only in
// src are copied into dest and prepended to the parent's child list.
func Merge(dest, src *Tree) {
	mergeNode(dest, dest.root, src, src.root)
}

func mergeNode(dest *Tree, dh Handle, src *Tree, sh Handle) {
	if dh == NilHandle || sh == NilHandle {
		return
	}
	dn := dest.NodeAt(dh)
	sn := src.NodeAt(sh)
	dn.MC.Merge(&sn.MC)
	dn.AMAF.Merge(&sn.AMAF)

	dChildren := dest.Children(dh)
	sChildren := src.Children(sh)

	byCoord := make(map[board.Move]Handle, len(dChildren))
	for _, c := range dChildren {
		byCoord[dest.NodeAt(c).Coord] = c
	}

	for _, sc := range sChildren {
		coord := src.NodeAt(sc).Coord
		if dc, ok := byCoord[coord]; ok {
			mergeNode(dest, dc, src, sc)
			continue
		}
		// Present only in src: copy the subtree into dest.
		copied := copySubtree(dest, dh, src, sc)
		n := dest.NodeAt(copied)
		n.Sibling = dn.Child
		dn.Child = copied
		dest.size.Add(1)
	}
}

func copySubtree(dest *Tree, destParent Handle, src *Tree, sh Handle) Handle {
	h, ok := dest.alloc()
	if !ok {
		return NilHandle
	}
	sn := src.NodeAt(sh)
	dn := dest.NodeAt(h)
	dn.Coord = sn.Coord
	dn.Depth = sn.Depth
	dn.Parent = destParent
	dn.MC.Merge(&sn.MC)
	dn.AMAF.Merge(&sn.AMAF)
	if sn.Terminal() {
		dn.SetTerminal(true)
	}

	var head Handle = NilHandle
	for c := sn.Child; c != NilHandle; c = src.NodeAt(c).Sibling {
		copied := copySubtree(dest, h, src, c)
		if copied == NilHandle {
			continue
		}
		dest.NodeAt(copied).Sibling = head
		head = copied
		dest.size.Add(1)
	}
	dn.Child = head
	if sn.Expanded() {
		dn.FinishExpand()
	}
	return h
}

// Normalize divides every node's playout counts by k, keeping mean
// values unchanged. Used after Merge under root-parallelisation to
// keep the combined tree's variance-adjusted estimates comparable to
// a single-tree search over the same wall-clock budget.
func (t *Tree) Normalize(k int32) {
	normalizeNode(t, t.root, k)
}

func normalizeNode(t *Tree, h Handle, k int32) {
	if h == NilHandle {
		return
	}
	n := t.NodeAt(h)
	n.MC.Normalize(k)
	n.AMAF.Normalize(k)
	for c := n.Child; c != NilHandle; c = t.NodeAt(c).Sibling {
		normalizeNode(t, c, k)
	}
}

// playoutsOrNaN returns NaN in place of v for a never-visited node
// (p == 0), so debug printers can tell it apart from a node whose
// Value() really is 0.
func playoutsOrNaN(p int32, v float64) float64 {
	if p == 0 {
		return math.NaN()
	}
	return v
}
