package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyReturnsDefaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesRecognisedKeys(t *testing.T) {
	cfg, err := Parse("threads=4,thread_model=treevl,pondering=1,mercy=25,gamelen=500")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, ThreadModelTreeVL, cfg.ThreadModel)
	assert.True(t, cfg.Pondering)
	assert.Equal(t, 25, cfg.Mercy)
	assert.Equal(t, 500, cfg.GameLen)
}

func TestParseFlagsWithoutValue(t *testing.T) {
	cfg, err := Parse("no_book,pass_all_alive,pondering")
	require.NoError(t, err)
	assert.True(t, cfg.NoBook)
	assert.True(t, cfg.PassAllAlive)
	assert.True(t, cfg.Pondering)
}

func TestParseAggregatesMultipleErrors(t *testing.T) {
	_, err := Parse("threads=notanumber,bogus_key=1,thread_model=unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threads")
	assert.Contains(t, err.Error(), "bogus_key")
	assert.Contains(t, err.Error(), "thread_model")
}

func TestParsePlayoutSubargsKeptVerbatim(t *testing.T) {
	cfg, err := Parse("playout=elo:gammafile=patterns.gamma")
	require.NoError(t, err)
	assert.Equal(t, "elo:gammafile=patterns.gamma", cfg.Playout)
}
