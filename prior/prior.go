// Package prior seeds a newly expanded tree node's children with a
// handful of heuristic (value, equivalent-playouts) pairs before any
// real playout reaches them, so early selection decisions are not
// pure noise. Grounded on spec.md §4.3 and on original_source's
// add_prior_value merge rule (uct/prior.c is not present in the
// retrieved original_source tree, so the merge arithmetic is taken
// directly from spec.md's literal restatement of it), using this
// module's tree.Node/stats.Pair arena instead of prior_map.
package prior

import (
	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/tactics"
	"github.com/stonetree/engine/tree"
)

// Config tunes the equivalent-playout weight of each heuristic source,
// matching spec.md §6's eqex knobs.
type Config struct {
	// EvenEqex is the equivalent playout weight of the flat 0.5 prior
	// applied to every child.
	EvenEqex int32
	// EyeFillEqex is the weight of the 0.0 penalty applied to children
	// that fill the mover's own eye.
	EyeFillEqex int32
	// TacticsEqex weights the capture/self-atari tactical heuristics.
	TacticsEqex int32
	// EloEqex weights the Elo-assess distribution prior.
	EloEqex int32
}

// DefaultConfig picks modest equivalent-playout weights, in the spirit
// of original_source's uct/prior.c defaults (not retrieved verbatim;
// chosen to keep priors influential for only the first handful of real
// playouts per spec.md §8's expectation that priors wash out quickly).
func DefaultConfig() Config {
	return Config{EvenEqex: 4, EyeFillEqex: 4, TacticsEqex: 3, EloEqex: 8}
}

// Seeder applies the prior rules to a freshly expanded node's
// children.
type Seeder struct {
	cfg Config
	tac tactics.Tactics
	elo *elo.Policy
}

// New builds a prior seeder. tac and elo may be nil to skip their
// respective heuristics (the even-game and eye-fill priors still
// apply).
func New(cfg Config, tac tactics.Tactics, eloPolicy *elo.Policy) *Seeder {
	return &Seeder{cfg: cfg, tac: tac, elo: eloPolicy}
}

// Seed applies every configured heuristic to parentBoard's children,
// one per move in moves, matching children 1:1 by position (children
// must already be allocated; search.Worker calls Seed from
// tree.Expand's seed callback).
func (s *Seeder) Seed(parentBoard board.Board, toPlay board.Colour, moves []board.Move, children []*tree.Node) {
	for i, m := range moves {
		if i >= len(children) {
			break
		}
		n := children[i]

		if s.cfg.EvenEqex > 0 {
			n.MC.AddN(s.cfg.EvenEqex, 0.5*float64(s.cfg.EvenEqex))
		}

		if m.Point != board.Pass && parentBoard.IsOnePointEye(m.Point, toPlay) && s.cfg.EyeFillEqex > 0 {
			n.MC.AddN(s.cfg.EyeFillEqex, 0)
		}

		if s.tac != nil && m.Point != board.Pass && s.cfg.TacticsEqex > 0 {
			eval, matched := 0.5, true
			switch {
			case s.tac.IsCapture(parentBoard, toPlay, m.Point):
				eval = 0.8
			case s.tac.IsBadSelfatari(parentBoard, toPlay, m.Point):
				eval = 0.1
			default:
				matched = false
			}
			if matched {
				n.MC.AddN(s.cfg.TacticsEqex, eval*float64(s.cfg.TacticsEqex))
			}
		}

		if s.elo != nil && m.Point != board.Pass && s.cfg.EloEqex > 0 {
			if value, ok := s.elo.PriorValue(parentBoard, toPlay, m.Point); ok {
				n.MC.AddN(s.cfg.EloEqex, float64(value)*float64(s.cfg.EloEqex))
			}
		}
	}
}
