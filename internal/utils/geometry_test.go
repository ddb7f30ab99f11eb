package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBounds(t *testing.T) {
	lat := 38.627003
	lon := -121.530398
	radius := 500.0

	bounds := CalculateBounds(lat, lon, radius)

	latDiff := bounds.MaxLat - bounds.MinLat
	lonDiff := bounds.MaxLon - bounds.MinLon

	// 1000m across at this latitude.
	assert.InDelta(t, 0.00898, latDiff, 0.0001)
	assert.InDelta(t, 0.01153, lonDiff, 0.0002)
	assert.Less(t, bounds.MinLat, lat)
	assert.Greater(t, bounds.MaxLat, lat)
	assert.Less(t, bounds.MinLon, lon)
	assert.Greater(t, bounds.MaxLon, lon)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		tolerance              float64
	}{
		{
			name: "Same point",
			lat1: 40.7128, lon1: -74.0060, lat2: 40.7128, lon2: -74.0060,
			expected: 0, tolerance: 0.001,
		},
		{
			name: "Adjacent stops on the short-distance path",
			lat1: 40.7128, lon1: -74.0060, lat2: 40.7129, lon2: -74.0061,
			expected: 13.5, tolerance: 1.0,
		},
		{
			name: "One meter apart near the equator",
			lat1: 0.0, lon1: 0.0, lat2: 0.00001, lon2: 0.00001,
			expected: 1.57, tolerance: 0.5,
		},
		{
			name: "New York to Los Angeles on the exact path",
			lat1: 40.7128, lon1: -74.0060, lat2: 34.0522, lon2: -118.2437,
			expected: 3935746, tolerance: 1000,
		},
		{
			name: "Quarter circumference",
			lat1: 0, lon1: 0, lat2: 0, lon2: 90,
			expected: 10007543, tolerance: 10000,
		},
		{
			name: "Crossing the date line",
			lat1: 35.6762, lon1: 139.6503, lat2: 37.7749, lon2: -122.4194,
			expected: 8280207, tolerance: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.tolerance)
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	lat1, lon1 := 40.7128, -74.0060
	lat2, lon2 := 34.0522, -118.2437

	distAB := Distance(lat1, lon1, lat2, lon2)
	distBA := Distance(lat2, lon2, lat1, lon1)

	assert.InDelta(t, distAB, distBA, 0.0001)
}

func TestDistanceEdgeCases(t *testing.T) {
	t.Run("Both points at a pole", func(t *testing.T) {
		assert.InDelta(t, 0, Distance(90, 0, 90, 180), 1)
		assert.InDelta(t, 0, Distance(-90, 0, -90, 180), 1)
	})

	t.Run("Half circumference at the equator", func(t *testing.T) {
		assert.InDelta(t, math.Pi*6371000, Distance(0, 0, 0, 180), 10000)
	})

	t.Run("Never negative, never beyond half circumference", func(t *testing.T) {
		points := []struct{ lat1, lon1, lat2, lon2 float64 }{
			{0, 0, 0, 0},
			{90, 0, -90, 0},
			{45, 45, -45, -135},
			{-90, 180, 90, -180},
		}
		for _, p := range points {
			d := Distance(p.lat1, p.lon1, p.lat2, p.lon2)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, 20037508.0)
		}
	})
}
