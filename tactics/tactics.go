// Package tactics declares the narrow tactical-query interface used by
// the Elo playout policy and the prior seeder. Group-liberty counting,
// ladder reading and the rest of the tactical machinery live in the
// external rule engine; this module only needs yes/no verdicts.
package tactics

import "github.com/stonetree/engine/board"

// Tactics answers tactical questions about a candidate move without
// the engine needing to understand group/liberty bookkeeping itself.
type Tactics interface {
	// IsBadSelfatari reports whether playing at p for c puts its own
	// group in a hopeless atari.
	IsBadSelfatari(b board.Board, c board.Colour, p board.Point) bool
	// IsCapture reports whether playing at p for c captures at least
	// one enemy stone.
	IsCapture(b board.Board, c board.Colour, p board.Point) bool
	// LibertiesAfter returns the liberty count of the group formed by
	// playing at p for c, as it would be immediately after the move.
	LibertiesAfter(b board.Board, c board.Colour, p board.Point) int
}
