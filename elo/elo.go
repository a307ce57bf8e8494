// Package elo implements the Coulom-style Elo playout policy: each
// legal move's probability is the product of its matched pattern
// feature gammas, sampled through a Fenwick-tree probability
// distribution. Grounded on original_source/playout/elo.c
// (elo_get_probdist/playout_elo_choose/playout_elo_assess), adapted
// from the C playout_policy vtable to a Go Policy struct operating
// over this module's board.Board/pattern.Matcher interfaces.
package elo

import (
	"github.com/chewxy/math32"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/pattern"
	"github.com/stonetree/engine/probdist"
	"github.com/stonetree/engine/prng"
	"github.com/stonetree/engine/tactics"
)

// Config holds the tunables original_source's playout_elo_init parses
// out of its "selfatari:gammafile:xspat" argument string (handled by
// this module's config package instead of ad hoc ':'-splitting).
type Config struct {
	// SelfatariPenalty multiplies a move's gamma when tactics reports
	// it as a bad self-atari. original_source defaults this to 0.06
	// (Remi Coulom's paper) but never wires it in (guarded by #if 0);
	// this port does apply it, since tactics.Tactics is available.
	SelfatariPenalty float32
}

// DefaultConfig mirrors original_source/playout/elo.c's pp->selfatari
// default.
func DefaultConfig() Config {
	return Config{SelfatariPenalty: 0.06}
}

// Policy is a playout move-chooser driven by pattern-matched gammas.
// Choose uses a coarse/fast feature set for speed inside playouts;
// Assess uses the full feature set to seed tree priors — the
// choose/assess split original_source keeps as two patternset structs
// on the same elo_policy.
type Policy struct {
	cfg    Config
	tac    tactics.Tactics
	choose pattern.Matcher
	assess pattern.Matcher
}

// New builds an Elo policy. choose is used for in-playout move
// selection (pattern.FeatureSetFast); assess is used to seed tree
// priors (pattern.FeatureSetFull). Either may be the same Matcher if
// the caller does not distinguish feature sets.
func New(cfg Config, tac tactics.Tactics, choose, assess pattern.Matcher) *Policy {
	return &Policy{cfg: cfg, tac: tac, choose: choose, assess: assess}
}

// ProbDist builds the move probability distribution over b's empty
// points for the side to_play, using the given feature matcher. The
// returned ProbDist indexes parallel to b.Empties(); index i's weight
// is 0 for passes, illegal moves, and self-filled eyes, matching
// elo_get_probdist's skip_move label.
func (p *Policy) ProbDist(m pattern.Matcher, cfg pattern.Config, b board.Board, toPlay board.Colour) *probdist.Fenwick {
	empties := b.Empties()
	pd := probdist.New(len(empties))

	for i, pt := range empties {
		move := board.Move{Point: pt, Colour: toPlay}

		if !b.IsLegal(move) {
			pd.Set(i, 0)
			continue
		}
		if b.IsOnePointEye(pt, toPlay) {
			pd.Set(i, 0)
			continue
		}

		gamma := float32(1.0)
		if p.tac != nil && p.tac.IsBadSelfatari(b, toPlay, pt) {
			gamma *= p.cfg.SelfatariPenalty
		}
		if m != nil {
			for _, feat := range m.Match(cfg, b, move) {
				gamma *= m.Gammas().Gamma(feat)
			}
		}
		pd.Set(i, clampGamma(gamma))
	}
	return pd
}

// Choose samples one legal move from b for toPlay, weighted by
// pattern gamma, using rng's draw to pick a position in the
// distribution. Mirrors playout_elo_choose.
func (p *Policy) Choose(rng *prng.Source, b board.Board, toPlay board.Colour) board.Move {
	empties := b.Empties()
	if len(empties) == 0 {
		return board.PassMove(toPlay)
	}

	pd := p.ProbDist(p.choose, pattern.Config{Set: pattern.FeatureSetFast}, b, toPlay)
	if pd.Total() <= 0 {
		return board.PassMove(toPlay)
	}

	idx := pd.Pick(rng.Float32() * pd.Total())
	if idx < 0 {
		return board.PassMove(toPlay)
	}
	return board.Move{Point: empties[idx], Colour: toPlay}
}

// PriorValue reports, for point pt, the fraction of total gamma mass
// it carries in toPlay's full-featured probability distribution over
// b — the per-move value added_prior_value averages in with weight
// games in original_source's playout_elo_assess.
func (p *Policy) PriorValue(b board.Board, toPlay board.Colour, pt board.Point) (value float32, ok bool) {
	empties := b.Empties()
	pd := p.ProbDist(p.assess, pattern.Config{Set: pattern.FeatureSetFull}, b, toPlay)
	total := pd.Total()
	if total <= 0 {
		return 0, false
	}
	for i, e := range empties {
		if e == pt {
			return pd.Get(i) / total, true
		}
	}
	return 0, false
}

// clampGamma keeps a feature-product gamma finite and non-negative;
// pattern gammas should never be negative, NaN or infinite, but a
// malformed gamma table should degrade to "never play this" rather
// than poison the whole distribution.
func clampGamma(g float32) float32 {
	if math32.IsNaN(g) || math32.IsInf(g, 0) || g < 0 {
		return 0
	}
	return g
}
