package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopSpatialIndex(t *testing.T) {
	n := New()
	a := n.AddStop(Stop{ID: "A", Name: "Pioneer Square", Lat: 47.6025, Lon: -122.3340})
	b := n.AddStop(Stop{ID: "B", Name: "University St", Lat: 47.6075, Lon: -122.3355})
	n.AddStop(Stop{ID: "C", Name: "Northgate", Lat: 47.7790, Lon: -122.3280})

	idx := NewStopIndex(n)
	assert.Equal(t, 3, idx.Len())

	t.Run("within radius", func(t *testing.T) {
		found := idx.Within(47.6030, -122.3342, 200)
		assert.ElementsMatch(t, []int{a}, found)

		found = idx.Within(47.6050, -122.3348, 1000)
		assert.ElementsMatch(t, []int{a, b}, found)
	})

	t.Run("nearest", func(t *testing.T) {
		stop, ok := idx.Nearest(47.6030, -122.3342, 500)
		require.True(t, ok)
		assert.Equal(t, a, stop)
	})

	t.Run("nothing nearby", func(t *testing.T) {
		_, ok := idx.Nearest(47.9000, -122.3000, 100)
		assert.False(t, ok)
	})

	t.Run("inserted stop becomes visible", func(t *testing.T) {
		d := n.CreateStop("D", "New Stop", 47.6500, -122.3400)
		idx.Insert(d, 47.6500, -122.3400)
		stop, ok := idx.Nearest(47.6501, -122.3401, 100)
		require.True(t, ok)
		assert.Equal(t, d, stop)
	})
}
