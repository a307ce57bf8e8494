package ownermap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stonetree/engine/board"
)

func TestJudgeRequiresThreshold(t *testing.T) {
	m := New(3)
	for i := 0; i < 10; i++ {
		m.AccumulatePoint(0, board.Black)
		m.EndPlayout()
	}
	owner, sure := m.Judge(0, 0.8, nil)
	assert.True(t, sure)
	assert.Equal(t, board.Black, owner)
}

func TestJudgeUnsureBelowThreshold(t *testing.T) {
	m := New(3)
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			m.AccumulatePoint(0, board.Black)
		} else {
			m.AccumulatePoint(0, board.White)
		}
		m.EndPlayout()
	}
	_, sure := m.Judge(0, 0.9, nil)
	assert.False(t, sure)
}

func TestGroupIsDeadWhenNeverOwned(t *testing.T) {
	m := New(3)
	for i := 0; i < 10; i++ {
		m.AccumulatePoint(0, board.White)
		m.AccumulatePoint(1, board.White)
		m.EndPlayout()
	}
	assert.True(t, m.GroupIsDead([]board.Point{0, 1}, board.Black, 0.7, nil))
	assert.False(t, m.GroupIsDead([]board.Point{0, 1}, board.White, 0.7, nil))
}

func TestPlayoutsCounts(t *testing.T) {
	m := New(3)
	m.EndPlayout()
	m.EndPlayout()
	assert.Equal(t, 2, m.Playouts())
}
