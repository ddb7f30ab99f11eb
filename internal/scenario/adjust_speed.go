package scenario

import (
	"fmt"

	"shunt.transitlab.org/internal/network"
)

// AdjustSpeed scales travel speed by a constant factor, uniformly speeding
// trips up or slowing them down. Supplying hops restricts the change to
// those stop-to-stop segments. There is no absolute speed parameter since
// the engine does not know inter-stop distances, only times.
//
// Speed changes do not alter stop sequences, so unlike stop insertion and
// removal this modification may also select individual trips.
type AdjustSpeed struct {
	baseModification

	Routes []string `json:"routes,omitempty"`

	// Patterns holds example trip IDs identifying whole patterns to adjust.
	Patterns []string `json:"patterns,omitempty"`

	Trips []string `json:"trips,omitempty"`

	// Scale is the multiplicative factor for speed. Values above 1 speed
	// trips up; ride times are multiplied by 1/Scale.
	Scale float64 `json:"scale"`

	// Hops restricts scaling to the listed directional stop pairs. Scenario
	// editors emit one copy of a hop per pattern containing it, so
	// duplicates are tolerated and deduplicated here.
	Hops [][]string `json:"hops,omitempty"`

	// ScaleDwells applies the factor to dwell times as well as rides.
	ScaleDwells bool `json:"scaleDwells,omitempty"`

	uniqueHops    [][2]string
	hopFromStops  []int
	hopToStops    []int
	patternsByHop []int
	routeSet      map[string]bool
	patternSet    map[string]bool
	tripSet       map[string]bool
}

func (m *AdjustSpeed) Type() string   { return TypeAdjustSpeed }
func (m *AdjustSpeed) SortOrder() int { return 0 }

func (m *AdjustSpeed) Resolve(n *network.Network) bool {
	if m.Scale <= 0 {
		m.addError("Scaling factor must be a positive number.")
	}
	if m.Hops != nil {
		seen := make(map[[2]string]bool)
		for _, pair := range m.Hops {
			if len(pair) != 2 {
				m.addError("Hops must all have exactly two stops.")
				continue
			}
			hop := [2]string{pair[0], pair[1]}
			if seen[hop] {
				continue
			}
			seen[hop] = true
			m.uniqueHops = append(m.uniqueHops, hop)
		}
		m.patternsByHop = make([]int, len(m.uniqueHops))
		for _, hop := range m.uniqueHops {
			from, ok := n.StopIndex(hop[0])
			if !ok {
				m.addError("Could not find hop origin stop %s.", hop[0])
				continue
			}
			to, ok := n.StopIndex(hop[1])
			if !ok {
				m.addError("Could not find hop destination stop %s.", hop[1])
				continue
			}
			m.hopFromStops = append(m.hopFromStops, from)
			m.hopToStops = append(m.hopToStops, to)
		}
	}
	m.checkIDs(m.Routes, m.Patterns, m.Trips, true, n)
	m.routeSet = stringSet(m.Routes)
	m.patternSet = stringSet(m.Patterns)
	m.tripSet = stringSet(m.Trips)
	return m.hasErrors()
}

func (m *AdjustSpeed) Apply(n *network.Network) bool {
	tripsAffected := 0
	out := make([]*network.TripPattern, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		edited, nTrips := m.processPattern(p)
		out = append(out, edited)
		tripsAffected += nTrips
	}
	n.Patterns = out
	if tripsAffected > 0 {
		m.addInfo("Changed speed on %d trips.", tripsAffected)
	} else {
		m.addError("This modification did not cause any changes to the network.")
	}
	for h, count := range m.patternsByHop {
		if count == 0 {
			m.addError("No patterns were affected by hop: %v.", m.uniqueHops[h])
		}
	}
	if len(m.uniqueHops) > 0 {
		m.addInfo("Number of patterns affected by each unique hop: %s.", fmt.Sprint(m.patternsByHop))
	}
	return m.hasErrors()
}

func (m *AdjustSpeed) processPattern(p *network.TripPattern) (*network.TripPattern, int) {
	if m.routeSet != nil && !m.routeSet[p.RouteID] {
		return p, 0
	}
	if m.patternSet != nil && p.ContainsNoTrips(m.patternSet) {
		return p, 0
	}
	if m.tripSet != nil && p.ContainsNoTrips(m.tripSet) {
		return p, 0
	}
	scaleHop := make([]bool, len(p.Stops)-1)
	if m.uniqueHops == nil {
		for i := range scaleHop {
			scaleHop[i] = true
		}
	} else {
		anyMatched := false
		for i := 0; i < len(p.Stops)-1; i++ {
			for h := range m.hopFromStops {
				if p.Stops[i] == m.hopFromStops[h] && p.Stops[i+1] == m.hopToStops[h] {
					scaleHop[i] = true
					m.patternsByHop[h]++
					anyMatched = true
					break
				}
			}
		}
		if !anyMatched {
			return p, 0
		}
	}
	var tripFilter func(string) bool
	if m.tripSet != nil {
		tripFilter = func(id string) bool { return m.tripSet[id] }
	}
	return p.RescaleHops(scaleHop, 1/m.Scale, m.ScaleDwells, tripFilter)
}
