package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndValue(t *testing.T) {
	var p Pair
	p.Add(1.0)
	p.Add(0.0)
	assert.EqualValues(t, 2, p.Playouts())
	assert.InDelta(t, 0.5, p.Value(), 1e-9)
}

func TestVirtualLossRoundTrip(t *testing.T) {
	var p Pair
	p.Add(0.5)
	p.AddVirtualLoss()
	assert.EqualValues(t, 2, p.Playouts())
	assert.EqualValues(t, 1, p.RealPlayouts())

	p.UndoVirtualLoss(1.0)
	assert.EqualValues(t, 2, p.Playouts())
	assert.EqualValues(t, 0, p.VirtualLoss())
	assert.InDelta(t, 0.75, p.Value(), 1e-9)
}

func TestMergeAndNormalize(t *testing.T) {
	var a, b Pair
	a.Add(1.0)
	a.Add(0.0)
	b.Add(1.0)
	b.Add(1.0)

	a.Merge(&b)
	assert.EqualValues(t, 4, a.Playouts())
	assert.InDelta(t, 0.75, a.Value(), 1e-9)

	a.Normalize(2)
	assert.EqualValues(t, 2, a.Playouts())
	assert.InDelta(t, 0.75, a.Value(), 1e-9)
}

func TestValueAlwaysInUnitRange(t *testing.T) {
	var p Pair
	for i := 0; i < 50; i++ {
		p.Add(float64(i%2) * 1.0)
		v := p.Value()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
