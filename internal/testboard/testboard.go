// Package testboard is a minimal concrete board.Board used only by
// this module's own tests and the cmd/stonetreectl demo. It implements simplified square-grid
// stone placement (no capture, no ko, no scoring) — enough surface
// for playout/prior/search tests to exercise real move generation
// and Play/Copy semantics without depending on a full rule engine.
package testboard

import "github.com/stonetree/engine/board"

// Board is a bare-bones square-grid position: stones never get
// captured and suicide is simply disallowed. It exists to let engine
// packages be tested against a real board.Board rather than a mock.
type Board struct {
	size    int
	stones  []board.Colour
	toMove  board.Colour
	moveNum int
	last    board.Move
	passes  int
}

// New builds an empty size x size board with black to move first.
func New(size int) *Board {
	return &Board{
		size:   size,
		stones: make([]board.Colour, size*size),
		toMove: board.Black,
	}
}

func (b *Board) Size() int { return b.size }

func (b *Board) Empties() []board.Point {
	out := make([]board.Point, 0, len(b.stones))
	for i, c := range b.stones {
		if c == board.Empty {
			out = append(out, board.Point(i))
		}
	}
	return out
}

// At reports the colour occupying p, or board.Empty if p is vacant or
// out of bounds.
func (b *Board) At(p board.Point) board.Colour {
	if !b.inBounds(p) {
		return board.Empty
	}
	return b.stones[p]
}

func (b *Board) ToMove() board.Colour { return b.toMove }
func (b *Board) MoveNumber() int      { return b.moveNum }
func (b *Board) LastMove() board.Move { return b.last }

func (b *Board) inBounds(p board.Point) bool {
	return p >= 0 && int(p) < len(b.stones)
}

func (b *Board) IsLegal(m board.Move) bool {
	if m.Point == board.Pass {
		return true
	}
	if m.Point == board.Resign {
		return true
	}
	if !b.inBounds(m.Point) {
		return false
	}
	return b.stones[m.Point] == board.Empty
}

func (b *Board) Play(m board.Move) board.PlayStatus {
	if !b.IsLegal(m) {
		return board.PlayIllegal
	}
	if m.Point == board.Pass {
		b.passes++
	} else if m.Point != board.Resign {
		b.stones[m.Point] = m.Colour
		b.passes = 0
	}
	b.last = m
	b.moveNum++
	b.toMove = m.Colour.Other()
	return board.PlayOK
}

// IsOnePointEye reports p empty and every orthogonal in-bounds
// neighbour occupied by c (diagonal/edge ownership rules are not
// modelled — this is a test fixture, not a rule engine).
func (b *Board) IsOnePointEye(p board.Point, c board.Colour) bool {
	if !b.inBounds(p) || b.stones[p] != board.Empty {
		return false
	}
	row, col := int(p)/b.size, int(p)%b.size
	neighbours := [][2]int{{row - 1, col}, {row + 1, col}, {row, col - 1}, {row, col + 1}}
	for _, n := range neighbours {
		if n[0] < 0 || n[0] >= b.size || n[1] < 0 || n[1] >= b.size {
			continue
		}
		idx := n[0]*b.size + n[1]
		if b.stones[idx] != c {
			return false
		}
	}
	return true
}

// PassIsSafe always reports true: this fixture never disputes a
// pass, since it has no scoring or dead-group logic of its own.
func (b *Board) PassIsSafe(board.Colour, []board.GroupID) bool {
	return true
}

func (b *Board) Copy() board.Board {
	cp := &Board{
		size:    b.size,
		stones:  make([]board.Colour, len(b.stones)),
		toMove:  b.toMove,
		moveNum: b.moveNum,
		last:    b.last,
		passes:  b.passes,
	}
	copy(cp.stones, b.stones)
	return cp
}

// ConsecutivePasses reports how many passes have been played in a
// row, the double-pass termination signal playout.Runner watches for.
func (b *Board) ConsecutivePasses() int { return b.passes }

// CountStones reports the number of black and white stones currently
// on the board — enough for a demo area-count scorer; real scoring
// (territory, captures, komi) is the rule engine's job.
func (b *Board) CountStones() (black, white int) {
	for _, c := range b.stones {
		switch c {
		case board.Black:
			black++
		case board.White:
			white++
		}
	}
	return black, white
}
