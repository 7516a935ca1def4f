package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizeEmptyMask(t *testing.T) {
	polys, err := Vectorize(&Mask{}, 0.6)
	require.NoError(t, err)
	assert.Empty(t, polys)
}

func TestVectorizeAllZeroMask(t *testing.T) {
	m := &Mask{Width: 16, Height: 16, Values: make([]float64, 256)}
	polys, err := Vectorize(m, 0.6)
	require.NoError(t, err)
	assert.Empty(t, polys)
}

func TestVectorizeSingleRegion(t *testing.T) {
	m := &Mask{Width: 16, Height: 16, Values: make([]float64, 256)}
	// An 8x8 block of high probability in the middle.
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			m.Values[y*16+x] = 0.9
		}
	}

	polys, err := Vectorize(m, 0.6)
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.GreaterOrEqual(t, len(polys[0]), 3)

	// Every contour point lies on the block.
	for _, p := range polys[0] {
		assert.GreaterOrEqual(t, p.X, 4.0)
		assert.LessOrEqual(t, p.X, 11.0)
		assert.GreaterOrEqual(t, p.Y, 4.0)
		assert.LessOrEqual(t, p.Y, 11.0)
	}
}

func TestVectorizeThresholdIsExclusive(t *testing.T) {
	// Values exactly at the threshold stay below it.
	m := &Mask{Width: 8, Height: 8, Values: make([]float64, 64)}
	for i := range m.Values {
		m.Values[i] = 0.6
	}
	polys, err := Vectorize(m, 0.6)
	require.NoError(t, err)
	assert.Empty(t, polys)
}
