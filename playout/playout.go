// Package playout runs random games to completion from a leaf
// position, grounded on original_source/playout/elo.c's choose loop
// and spec.md §4.2, adapted to this module's board.Board seam and the
// teacher's per-worker prng.Source discipline (one Source per
// goroutine, never shared).
package playout

import (
	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/ownermap"
	"github.com/stonetree/engine/prng"
	"github.com/stonetree/engine/tactics"
)

// Config bounds one playout's length, matching spec.md §6's
// mercy=N/gamelen=N knobs.
type Config struct {
	// Mercy ends the playout early once the absolute capture-count
	// gap between sides reaches this value. 0 disables the check.
	Mercy int
	// GameLen caps the number of moves played; a playout that reaches
	// the cap is scored by the Scorer like any other.
	GameLen int
}

// DefaultConfig matches Pachi-family defaults: a generous move cap and
// mercy rule disabled.
func DefaultConfig() Config {
	return Config{Mercy: 0, GameLen: 1000}
}

// Result is the outcome of one playout.
type Result struct {
	// BlackWin is +1, WhiteWin is -1, Draw is 0, expressed from
	// black's perspective as spec.md §4.2 requires.
	ResultForBlack int
	// ScoreMargin is the absolute point margin reported by the
	// Runner's Scorer.
	ScoreMargin int
	// Amaf marks the first colour to play each point during the
	// playout — spec.md §4.2's amaf_record.
	Amaf *AmafRecord
}

// AmafRecord implements selection.AmafRecord: the first coloured play
// recorded for each point visited during a playout.
type AmafRecord struct {
	firstColour map[int32]board.Colour
}

func newAmafRecord() *AmafRecord {
	return &AmafRecord{firstColour: make(map[int32]board.Colour)}
}

func (r *AmafRecord) record(p board.Point, c board.Colour) {
	key := int32(p)
	if _, ok := r.firstColour[key]; !ok {
		r.firstColour[key] = c
	}
}

// Contains reports whether point p was first played by the colour
// implied by blackToMove (true means Black, false means White) —
// satisfies selection.AmafRecord.
func (r *AmafRecord) Contains(p int32, blackToMove bool) bool {
	c, ok := r.firstColour[p]
	if !ok {
		return false
	}
	want := board.White
	if blackToMove {
		want = board.Black
	}
	return c == want
}

// Scorer settles a terminated playout's territory, returning the
// result from black's perspective and the absolute point margin.
// Scoring itself (area count, dead-group resolution) is the rule
// engine's job and lives outside this module; Runner only needs the
// verdict.
type Scorer func(b board.Board) (resultForBlack int, margin int)

// Runner plays games to completion using an elo.Policy for move
// selection and a caller-supplied Scorer to settle the result.
type Runner struct {
	cfg    Config
	policy *elo.Policy
	score  Scorer
	tac    tactics.Tactics
}

// New builds a playout runner. score must not be nil. tac may be nil,
// in which case the mercy rule never triggers (no capture counts are
// available to compare).
func New(cfg Config, policy *elo.Policy, score Scorer, tac tactics.Tactics) *Runner {
	return &Runner{cfg: cfg, policy: policy, score: score, tac: tac}
}

// Play runs one playout from b (which is mutated in place — callers
// must pass a Copy() when the original must survive) and folds the
// final position into owners. Any internal illegality the underlying
// board reports is treated as a pass rather than propagated, per
// spec.md §4.2's "failures are not reported".
func (r *Runner) Play(rng *prng.Source, b board.Board, owners *ownermap.Map) Result {
	amaf := newAmafRecord()
	blackCaptures, whiteCaptures := 0, 0
	consecutivePasses := 0
	moves := 0

	for moves < r.cfg.GameLen {
		toPlay := b.ToMove()
		move := r.policy.Choose(rng, b, toPlay)

		if r.tac != nil && move.Point != board.Pass && r.tac.IsCapture(b, toPlay, move.Point) {
			if toPlay == board.Black {
				blackCaptures++
			} else {
				whiteCaptures++
			}
		}

		status := b.Play(move)
		if status != board.PlayOK {
			// Treat any internal illegality as a forced pass rather
			// than surfacing an error from deep inside a playout.
			move = board.PassMove(toPlay)
			b.Play(move)
		}

		if move.Point == board.Pass {
			consecutivePasses++
		} else {
			consecutivePasses = 0
			amaf.record(move.Point, toPlay)
		}

		moves++

		if r.cfg.Mercy > 0 {
			diff := blackCaptures - whiteCaptures
			if diff < 0 {
				diff = -diff
			}
			if diff >= r.cfg.Mercy {
				break
			}
		}
		if consecutivePasses >= 2 {
			break
		}
	}

	resultForBlack, margin := r.score(b)
	if owners != nil {
		size := b.Size()
		for i := 0; i < size*size; i++ {
			p := board.Point(i)
			if c := b.At(p); c != board.Empty {
				owners.AccumulatePoint(p, c)
			}
		}
		owners.EndPlayout()
	}

	return Result{
		ResultForBlack: resultForBlack,
		ScoreMargin:    margin,
		Amaf:           amaf,
	}
}
