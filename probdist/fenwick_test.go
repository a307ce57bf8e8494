package probdist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndTotal(t *testing.T) {
	f := New(5)
	f.Set(0, 1)
	f.Set(1, 2)
	f.Set(2, 0)
	f.Set(3, 3)
	f.Set(4, 4)
	assert.Equal(t, float32(10), f.Total())

	// overwrite
	f.Set(1, 5)
	assert.Equal(t, float32(13), f.Total())
}

func TestPickDistribution(t *testing.T) {
	f := New(3)
	f.Set(0, 1)
	f.Set(1, 2)
	f.Set(2, 7)

	const draws = 20000
	counts := make([]int, 3)
	for i := 0; i < draws; i++ {
		draw := f.Total() * float32(i) / float32(draws)
		idx := f.Pick(draw)
		require.GreaterOrEqual(t, idx, 0)
		counts[idx]++
	}

	// Even deterministic sweep should land roughly proportional to
	// weight (1:2:7 out of 10).
	assert.InDelta(t, 0.1, float64(counts[0])/draws, 0.02)
	assert.InDelta(t, 0.2, float64(counts[1])/draws, 0.02)
	assert.InDelta(t, 0.7, float64(counts[2])/draws, 0.02)
}

func TestPickZeroTotal(t *testing.T) {
	f := New(4)
	assert.Equal(t, -1, f.Pick(0))
}

func TestPickSkipsZeroWeight(t *testing.T) {
	f := New(3)
	f.Set(0, 0)
	f.Set(1, 1)
	f.Set(2, 0)
	for i := 0; i < 100; i++ {
		idx := f.Pick(float32(i) / 100 * f.Total())
		assert.Equal(t, 1, idx)
	}
}
