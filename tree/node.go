// Package tree implements the node pool, parent/child links, and
// promotion/merge/persistence machinery of spec.md §4.4. Nodes live in
// a flat arena addressed by integer Handle rather than heap pointers —
// grounded on Elvenson-alphabeth/mcts's naughty/freelist arena
// (mcts/tree.go's alloc/free/cleanup), which the spec's own Design
// Notes (§9) call out as the right shape for a rooted tree with
// parent links: cyclic pointer references are awkward to free safely,
// index-based handles sidestep that entirely.
package tree

import (
	"sync/atomic"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/stats"
)

// Handle addresses a node inside a Tree's arena. NilHandle (-1) never
// refers to a real node; the zero value addresses arena slot 0.
type Handle int32

// NilHandle is the "no node" sentinel, returned by lookups that fail.
const NilHandle Handle = -1

// flag bits packed into Node.flags, CAS-guarded the way the teacher's
// node.go packs CanExpand/ExpandingMask/ExpandedMask into one
// atomically-accessed word.
const (
	flagExpanding uint32 = 1 << iota
	flagExpanded
	flagTerminal
	// flagArenaExhausted is sticky: once Expand fails to allocate all
	// children for this node, it is never attempted again, rather than
	// being retried by every worker that next reaches the leaf.
	flagArenaExhausted
)

// Node is one arena-resident tree node. Parent/child/sibling links are
// Handles, not pointers, so promotion can discard a whole subtree by
// returning its handles to the free list without chasing live
// pointers elsewhere in the tree.
type Node struct {
	Coord  board.Move
	Parent Handle
	// Child is the head of this node's singly linked sibling list,
	// ordered by insertion (spec.md §3).
	Child   Handle
	Sibling Handle

	MC   stats.Pair
	AMAF stats.Pair

	flags atomic.Uint32
	Depth int16
}

func (n *Node) Terminal() bool       { return n.flags.Load()&flagTerminal != 0 }
func (n *Node) Expanded() bool       { return n.flags.Load()&flagExpanded != 0 }
func (n *Node) Expanding() bool      { return n.flags.Load()&flagExpanding != 0 }
func (n *Node) ArenaExhausted() bool { return n.flags.Load()&flagArenaExhausted != 0 }

// SetTerminal marks (or clears) the terminal flag. Expand calls it on
// a parent with no moves while that parent holds flagExpanding, and
// Merge calls it on freshly copied nodes before they are linked in.
func (n *Node) SetTerminal(terminal bool) {
	for {
		old := n.flags.Load()
		next := old &^ flagTerminal
		if terminal {
			next |= flagTerminal
		}
		if n.flags.CompareAndSwap(old, next) {
			return
		}
	}
}

// TryBeginExpand is the expansion critical section's entry gate: it
// atomically sets flagExpanding if, and only if, none of flagExpanding,
// flagExpanded and flagArenaExhausted is already set. At most one
// caller ever observes
// true (invariant §3: "at most one worker at a time holds
// is_expanding for a given node").
func (n *Node) TryBeginExpand() bool {
	for {
		old := n.flags.Load()
		if old&(flagExpanding|flagExpanded|flagArenaExhausted) != 0 {
			return false
		}
		if n.flags.CompareAndSwap(old, old|flagExpanding) {
			return true
		}
	}
}

// FinishExpand publishes the node's children and clears flagExpanding.
// Callers MUST have already written n.Child (and every child's
// fields) before calling FinishExpand: the atomic store here is the
// release half of the release/acquire pair spec.md §5 requires, so any
// worker that observes Expanded() == true also observes the fully
// linked child list.
func (n *Node) FinishExpand() {
	for {
		old := n.flags.Load()
		next := (old &^ flagExpanding) | flagExpanded
		if n.flags.CompareAndSwap(old, next) {
			return
		}
	}
}

// AbandonExpand clears flagExpanding without setting flagExpanded —
// used when an expansion attempt already admitted by TryBeginExpand is
// aborted. arenaExhausted, set true when the abort was caused by
// tree.ErrArenaFull, also sets the sticky flagArenaExhausted so this
// node is never offered to TryBeginExpand again: arena exhaustion will
// not resolve itself on a later attempt against the same node, so
// retrying it forever would only spin every worker that reaches it.
func (n *Node) AbandonExpand(arenaExhausted bool) {
	for {
		old := n.flags.Load()
		next := old &^ flagExpanding
		if arenaExhausted {
			next |= flagArenaExhausted
		}
		if n.flags.CompareAndSwap(old, next) {
			return
		}
	}
}
