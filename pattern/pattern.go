// Package pattern declares the matcher interface consumed by the Elo
// playout policy. Spatial pattern dictionaries and their on-disk
// format are out of scope for this module; only the matcher contract
// lives here.
package pattern

import "github.com/stonetree/engine/board"

// Feature identifies one matched board feature (a capture, a
// self-atari, a spatial pattern instance, ...). The concrete feature
// vocabulary belongs to the external pattern dictionary; the engine
// only needs to multiply gammas together.
type Feature struct {
	Class int32
	ID    int32
}

// FeatureSet selects which family of features a Config applies —
// "spatial only", "everything except spatial", and so on, per the
// playout=elo:... sub-configuration.
type FeatureSet int

const (
	FeatureSetFull FeatureSet = iota
	FeatureSetFast
)

// Config carries whatever matcher-specific setup (loaded dictionaries,
// feature set selection) a concrete Matcher implementation needs. The
// engine treats it as opaque.
type Config struct {
	Set FeatureSet
}

// GammaTable maps a matched Feature to its trained gamma weight.
type GammaTable interface {
	Gamma(f Feature) float32
}

// Matcher finds the features a move exhibits on a given board.
type Matcher interface {
	Match(cfg Config, b board.Board, m board.Move) []Feature
	Gammas() GammaTable
}
