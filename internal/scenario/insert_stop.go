package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// InsertStop inserts one existing stop into every pattern of the selected
// routes, immediately after the first AfterStops member encountered in each
// pattern's stop sequence. Supplying several after-stops covers both travel
// directions and branches converging on a common trunk.
//
// The ride time of the hop being split, plus ExtraTravelTime, is divided
// evenly between the two new hops around the inserted stop.
type InsertStop struct {
	baseModification

	Routes []string `json:"routes,omitempty"`

	// Stop is the GTFS ID of the stop to insert.
	Stop string `json:"stop"`

	AfterStops []string `json:"afterStops,omitempty"`

	// DwellTime is how long the vehicle waits at the new stop, in seconds.
	DwellTime int `json:"dwellTime,omitempty"`

	// ExtraTravelTime covers deceleration, acceleration, and detour caused
	// by serving the new stop, in seconds, not including dwell.
	ExtraTravelTime int `json:"extraTravelTime,omitempty"`

	intStop  int
	intAfter map[int]bool
	routeSet map[string]bool
}

func (m *InsertStop) Type() string   { return TypeInsertStop }
func (m *InsertStop) SortOrder() int { return 40 }

func (m *InsertStop) Resolve(n *network.Network) bool {
	idx, ok := n.StopIndex(m.Stop)
	if !ok {
		m.addError("Could not find a stop to insert having GTFS ID %s.", m.Stop)
	}
	m.intStop = idx
	if len(m.AfterStops) == 0 {
		m.addError("You must supply at least one stop to insert after.")
	}
	m.intAfter = make(map[int]bool, len(m.AfterStops))
	for _, id := range m.AfterStops {
		after, ok := n.StopIndex(id)
		if !ok {
			m.addError("Could not find insert-after stop having GTFS ID %s.", id)
			continue
		}
		m.intAfter[after] = true
	}
	if m.DwellTime < 0 || m.ExtraTravelTime < 0 {
		m.addError("Dwell time and extra travel time must not be negative.")
	}
	m.routeSet = stringSet(m.Routes)
	return m.hasErrors()
}

func (m *InsertStop) Apply(n *network.Network) bool {
	patternsAffected := 0
	out := make([]*network.TripPattern, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		edited := m.processPattern(p)
		out = append(out, edited)
		if edited != p {
			patternsAffected++
		}
	}
	n.Patterns = out
	if patternsAffected == 0 {
		m.addWarning("No pattern contained any of the insert-after stops; the network is unchanged.")
	} else {
		m.addInfo("Inserted stop %s into %d patterns.", m.Stop, patternsAffected)
	}
	return m.hasErrors()
}

func (m *InsertStop) processPattern(p *network.TripPattern) *network.TripPattern {
	if m.routeSet != nil && !m.routeSet[p.RouteID] {
		return p
	}
	insertionPoint := -1
	for i, stop := range p.Stops {
		if m.intAfter[stop] {
			insertionPoint = i
			break
		}
	}
	if insertionPoint == -1 {
		return p
	}
	if insertionPoint == len(p.Stops)-1 {
		// The only match is the final stop, where there is no following hop
		// to split. Extending a pattern past its end is add-stops territory.
		m.addWarning("Stop %s can only be inserted after the last stop of a pattern on route %s; pattern skipped.",
			m.Stop, p.RouteID)
		return p
	}
	return p.InsertStopAfter(insertionPoint, m.intStop, m.DwellTime, m.ExtraTravelTime)
}
