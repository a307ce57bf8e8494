// Package protocol declares the command surface an external text
// protocol handler drives the engine through, per spec.md §6's
// "upstream protocol handler (external) calls the engine through
// these hooks". This module never implements the text protocol
// itself (GTP-style parsing, I/O) — only the Go-shaped contract a
// concrete front end dispatches to.
package protocol

import (
	"context"

	"github.com/stonetree/engine/board"
)

// TimeInfo carries whatever clock state genmove needs to size its
// search budget — absolute remaining time, byoyomi periods, or a
// fixed move time, interpreted by the caller's time-allocation policy
// (search.Budget is derived from this, outside this package).
type TimeInfo struct {
	MainTimeRemaining float64 // seconds
	ByoyomiTime       float64 // seconds per period, 0 if not in byoyomi
	ByoyomiPeriods    int
}

// Engine is the hook surface spec.md §6 names. search.Engine
// implements it by wrapping a search.Controller and its collaborators;
// dispatch (reading/writing the actual line protocol) lives outside
// this module.
type Engine interface {
	// NotifyPlay informs the engine a move was played on b (by either
	// side), so it can promote its tree or discard it.
	NotifyPlay(ctx context.Context, b board.Board, m board.Move) error
	// Genmove asks the engine to generate and play its own move for
	// colour, returning it. passAllAlive instructs the engine to treat
	// every group as alive when judging a pass.
	Genmove(ctx context.Context, b board.Board, info TimeInfo, colour board.Colour, passAllAlive bool) (board.Move, error)
	// DeadGroupList returns the groups the engine currently judges
	// dead, for scoring.
	DeadGroupList(ctx context.Context, b board.Board) ([]board.GroupID, error)
	// Chat answers a free-form text command (engine identity, status
	// queries, debug dumps) with a text response.
	Chat(ctx context.Context, cmd string) (string, error)
	// Done releases any resources the engine is holding (tree arena,
	// worker pool) at the end of a session.
	Done() error
}
