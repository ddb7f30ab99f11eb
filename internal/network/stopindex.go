package network

import (
	"github.com/tidwall/rtree"

	"shunt.transitlab.org/internal/utils"
)

// StopIndex is a spatial index over a network's stop coordinates. It answers
// proximity queries when scenarios create new stops, so a stop placed on top
// of an existing one can be reported instead of silently duplicated.
type StopIndex struct {
	tree rtree.RTreeG[int]
}

// NewStopIndex builds an index over every stop currently in the network.
func NewStopIndex(n *Network) *StopIndex {
	idx := &StopIndex{}
	for i, s := range n.Stops {
		idx.Insert(i, s.Lat, s.Lon)
	}
	return idx
}

// Insert adds one stop to the index. Stops created mid-scenario are inserted
// as they are allocated so later queries in the same scenario see them.
func (idx *StopIndex) Insert(stop int, lat, lon float64) {
	p := [2]float64{lon, lat}
	idx.tree.Insert(p, p, stop)
}

// Within returns the dense indices of all stops within radiusMeters of the
// given point, unordered.
func (idx *StopIndex) Within(lat, lon, radiusMeters float64) []int {
	bounds := utils.CalculateBounds(lat, lon, radiusMeters)
	var found []int
	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(min, max [2]float64, stop int) bool {
			if utils.Distance(lat, lon, min[1], min[0]) <= radiusMeters {
				found = append(found, stop)
			}
			return true
		})
	return found
}

// Nearest returns the closest indexed stop within radiusMeters of the point,
// if any.
func (idx *StopIndex) Nearest(lat, lon, radiusMeters float64) (int, bool) {
	best := -1
	bestDist := radiusMeters
	bounds := utils.CalculateBounds(lat, lon, radiusMeters)
	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(min, max [2]float64, stop int) bool {
			d := utils.Distance(lat, lon, min[1], min[0])
			if d <= bestDist {
				best = stop
				bestDist = d
			}
			return true
		})
	if best == -1 {
		return 0, false
	}
	return best, true
}

// Len reports how many stops are indexed.
func (idx *StopIndex) Len() int {
	return idx.tree.Len()
}
