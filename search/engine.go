package search

import (
	"context"
	"fmt"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/protocol"
	"github.com/stonetree/engine/tactics"
	"github.com/stonetree/engine/tree"
)

// Engine adapts a Controller to protocol.Engine, the seam an external
// text-protocol front end dispatches through. It owns the one piece
// of state NotifyPlay/Genmove need beyond the Controller itself: which
// collaborators (the Elo policy, tactics) to hand each Search call.
type Engine struct {
	ctrl *Controller
	elo  *elo.Policy
	tac  tactics.Tactics
}

// NewEngine wires a Controller to its collaborators, producing a
// ready protocol.Engine.
func NewEngine(ctrl *Controller, eloPolicy *elo.Policy, tac tactics.Tactics) *Engine {
	return &Engine{ctrl: ctrl, elo: eloPolicy, tac: tac}
}

var _ protocol.Engine = (*Engine)(nil)

// NotifyPlay promotes the tree onto m if m is a reachable child of the
// current root, or resets to a fresh tree rooted after m otherwise —
// spec.md §4.7's pondering-guess-wrong fallback, but applied to every
// notified move, not only pondering.
func (e *Engine) NotifyPlay(_ context.Context, b board.Board, m board.Move) error {
	if err := e.ctrl.Promote(m); err != nil {
		e.ctrl.Reset(tree.Config{Capacity: defaultArenaCapacity}, m.Colour.Other())
	}
	return nil
}

const defaultArenaCapacity = 1 << 20

// Genmove runs a search from b for colour and returns its chosen
// move, resigning instead if the position is judged hopeless. info is
// accepted for interface conformance; deriving a wall-clock Budget
// from it is the caller's time-allocation policy, not this engine's.
func (e *Engine) Genmove(ctx context.Context, b board.Board, _ protocol.TimeInfo, colour board.Colour, _ bool) (board.Move, error) {
	move := e.ctrl.Search(ctx, b, e.elo, e.tac)
	if e.ctrl.ShouldResign() {
		return board.Move{Point: board.Resign, Colour: colour}, nil
	}
	move.Colour = colour
	if err := e.ctrl.Promote(move); err != nil {
		e.ctrl.Reset(tree.Config{Capacity: defaultArenaCapacity}, colour.Other())
	}
	return move, nil
}

// DeadGroupList is not implemented: group membership and life/death
// judgement are the external rule engine's concern (board.Board
// exposes no group-membership accessor the search module could use to
// enumerate groups itself), so this always reports no dead groups.
func (e *Engine) DeadGroupList(context.Context, board.Board) ([]board.GroupID, error) {
	return nil, nil
}

// Chat answers a handful of static status queries; anything else is
// reported unknown rather than guessed at.
func (e *Engine) Chat(_ context.Context, cmd string) (string, error) {
	switch cmd {
	case "name":
		return "stonetree", nil
	case "status":
		root := e.ctrl.Tree().Root()
		n := e.ctrl.Tree().NodeAt(root)
		return fmt.Sprintf("state=%s playouts=%d collisions=%d", e.ctrl.State(), n.MC.Playouts(), e.ctrl.Collisions()), nil
	default:
		return "", fmt.Errorf("unknown chat command %q", cmd)
	}
}

// Done is a no-op: the tree arena and worker pool need no explicit
// teardown beyond letting the Controller be garbage collected.
func (e *Engine) Done() error { return nil }
