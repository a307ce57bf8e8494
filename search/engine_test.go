package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonetree/engine/board"
	"github.com/stonetree/engine/elo"
	"github.com/stonetree/engine/internal/testboard"
	"github.com/stonetree/engine/protocol"
)

func TestEngineGenmoveReturnsAMove(t *testing.T) {
	c := newController(t, ThreadModelTreeVL, 1)
	eloPolicy := elo.New(elo.DefaultConfig(), nil, nil, nil)
	e := NewEngine(c, eloPolicy, nil)

	b := testboard.New(5)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	move, err := e.Genmove(ctx, b, protocol.TimeInfo{}, board.Black, false)
	require.NoError(t, err)
	assert.Equal(t, board.Black, move.Colour)
}

func TestEngineChatReportsStatus(t *testing.T) {
	c := newController(t, ThreadModelTreeVL, 1)
	e := NewEngine(c, nil, nil)

	reply, err := e.Chat(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "stonetree", reply)

	reply, err = e.Chat(context.Background(), "status")
	require.NoError(t, err)
	assert.Equal(t, "state=idle playouts=0 collisions=0", reply)

	_, err = e.Chat(context.Background(), "nonsense")
	assert.Error(t, err)
}
