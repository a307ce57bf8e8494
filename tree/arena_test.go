package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
)

func TestFastAllocExhaustionMarksNonExpandable(t *testing.T) {
	tr := New(Config{FastAlloc: true, Capacity: 2}, board.Black)
	root := tr.Root()
	require.True(t, tr.NodeAt(root).TryBeginExpand())

	moves := []board.Move{{Point: 1, Colour: board.Black}, {Point: 2, Colour: board.Black}}
	err := tr.Expand(root, moves, 1, nil)
	assert.ErrorIs(t, err, ErrArenaFull)
	assert.False(t, tr.NodeAt(root).Expanding())
	assert.False(t, tr.NodeAt(root).Expanded())
}

func TestTryBeginExpandIsExclusive(t *testing.T) {
	tr := New(Config{}, board.Black)
	root := tr.Root()
	assert.True(t, tr.NodeAt(root).TryBeginExpand())
	assert.False(t, tr.NodeAt(root).TryBeginExpand())
}

func TestZeroMovesMarksTerminal(t *testing.T) {
	tr := New(Config{}, board.Black)
	root := tr.Root()
	require.True(t, tr.NodeAt(root).TryBeginExpand())
	require.NoError(t, tr.Expand(root, nil, 1, nil))
	assert.True(t, tr.NodeAt(root).Terminal())
	assert.True(t, tr.NodeAt(root).Expanded())
}
