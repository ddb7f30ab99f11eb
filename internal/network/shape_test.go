package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeEncodeDecode(t *testing.T) {
	coords := [][]float64{
		{47.60250, -122.33400},
		{47.60750, -122.33550},
		{47.61100, -122.33800},
	}
	encoded := EncodeShape(coords)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeShape(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(coords))
	for i := range coords {
		assert.InDelta(t, coords[i][0], decoded[i][0], 1e-5)
		assert.InDelta(t, coords[i][1], decoded[i][1], 1e-5)
	}
}

func TestDecodeShapeEmpty(t *testing.T) {
	decoded, err := DecodeShape(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestStraightLineShape(t *testing.T) {
	n := New()
	a := n.AddStop(Stop{ID: "A", Lat: 47.60, Lon: -122.33})
	b := n.AddStop(Stop{ID: "B", Lat: 47.61, Lon: -122.34})

	t.Run("two stops", func(t *testing.T) {
		shape := StraightLineShape(n, []int{a, b})
		require.NotEmpty(t, shape)
		decoded, err := DecodeShape(shape)
		require.NoError(t, err)
		require.Len(t, decoded, 2)
		assert.InDelta(t, 47.60, decoded[0][0], 1e-5)
		assert.InDelta(t, -122.34, decoded[1][1], 1e-5)
	})

	t.Run("single stop has no alignment", func(t *testing.T) {
		assert.Nil(t, StraightLineShape(n, []int{a}))
	})
}
