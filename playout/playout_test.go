package playout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/ownermap"
	"github.com/stonetree/engine/prng"
)

func lastMoverScorer(b board.Board) (int, int) {
	switch b.LastMove().Colour {
	case board.Black:
		return 1, 1
	case board.White:
		return -1, 1
	default:
		return 0, 0
	}
}

func TestPlayStopsOnDoublePass(t *testing.T) {
	b := testboard.New(1)
	policy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	runner := New(DefaultConfig(), policy, lastMoverScorer, nil)

	rng := prng.NewSeeded(1)
	owners := ownermap.New(1)
	result := runner.Play(rng, b, owners)

	require.NotNil(t, result.Amaf)
	assert.Equal(t, 1, owners.Playouts())
	// The lone point is a one-point eye for either side, so both sides
	// pass at once and the playout stops after two moves.
	assert.Equal(t, 2, b.MoveNumber())
}

func TestPlayAccumulatesFinalPositionIntoOwners(t *testing.T) {
	b := testboard.New(9)
	b.Play(board.Move{Point: 0, Colour: board.Black})
	b.Play(board.Move{Point: 1, Colour: board.White})
	b.Play(board.PassMove(board.Black))
	b.Play(board.PassMove(board.White))

	policy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	runner := New(Config{GameLen: 0}, policy, lastMoverScorer, nil)

	owners := ownermap.New(9)
	runner.Play(prng.NewSeeded(4), b, owners)

	owner, sure := owners.Judge(0, 0.5, nil)
	assert.True(t, sure)
	assert.Equal(t, board.Black, owner)

	owner, sure = owners.Judge(1, 0.5, nil)
	assert.True(t, sure)
	assert.Equal(t, board.White, owner)

	_, sure = owners.Judge(2, 0.5, nil)
	assert.False(t, sure, "an empty point should never be claimed as owned")
}

func TestPlayRespectsGameLenCap(t *testing.T) {
	b := testboard.New(9)
	policy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	cfg := Config{GameLen: 3}
	runner := New(cfg, policy, lastMoverScorer, nil)

	rng := prng.NewSeeded(2)
	result := runner.Play(rng, b, nil)
	assert.LessOrEqual(t, b.MoveNumber(), 3)
	assert.NotNil(t, result.Amaf)
}

func TestAmafRecordsFirstColourOnly(t *testing.T) {
	b := testboard.New(9)
	policy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	runner := New(Config{GameLen: 20}, policy, lastMoverScorer, nil)

	rng := prng.NewSeeded(3)
	result := runner.Play(rng, b, nil)

	played := false
	for p := board.Point(0); p < 81; p++ {
		if result.Amaf.Contains(int32(p), true) || result.Amaf.Contains(int32(p), false) {
			played = true
			break
		}
	}
	assert.True(t, played)

	for p := int32(0); p < 81; p++ {
		assert.False(t, result.Amaf.Contains(p, true) && result.Amaf.Contains(p, false), "point %d recorded for both colours", p)
	}
}
