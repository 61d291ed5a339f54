package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoise_RangeAndDeterminism(t *testing.T) {
	a := NewNoise(42, 0.1)
	b := NewNoise(42, 0.1)

	for x := 0.0; x < 50; x += 5 {
		for y := 0.0; y < 50; y += 5 {
			v := a.Noise3D(x, y, 15)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			assert.Equal(t, v, b.Noise3D(x, y, 15))

			w := a.Noise2D(x, y)
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}
	}
}

func TestNoise_Index(t *testing.T) {
	n := NewNoise(7, 0)
	assert.Equal(t, 0, n.Index(1, 2, 3, 1))
	assert.Equal(t, 0, n.Index(1, 2, 3, 0))

	for x := 0.0; x < 100; x += 5 {
		idx := n.Index(x, x/2, 10, 4)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
}
