package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// AddStops splices new stops into every pattern of the selected routes,
// replacing the part of the timetable between FromStop and ToStop. With no
// FromStop the whole timetable up to ToStop is replaced; with no ToStop,
// everything after FromStop. Trips on a pattern share one stop sequence, so
// the modification targets whole routes rather than individual trips.
type AddStops struct {
	baseModification

	Routes []string `json:"routes,omitempty"`

	// FromStop is the existing stop after which the new segment begins.
	FromStop string `json:"fromStop,omitempty"`

	// ToStop is the existing stop before which the new segment ends.
	ToStop string `json:"toStop,omitempty"`

	// Stops to insert between the anchors. May be empty: a splice with no
	// new stops and a single hop time expresses a nonstop section.
	Stops []StopSpec `json:"stops,omitempty"`

	// DwellTimes holds one entry per new stop.
	DwellTimes []int `json:"dwellTimes,omitempty"`

	// HopTimes holds one entry more than Stops when both anchors are
	// supplied, and exactly len(Stops) entries otherwise.
	HopTimes []int `json:"hopTimes,omitempty"`

	intFromStop int
	intToStop   int
	intNewStops []int
	routeSet    map[string]bool
}

func (m *AddStops) Type() string   { return TypeAddStops }
func (m *AddStops) SortOrder() int { return 40 }

func (m *AddStops) Resolve(n *network.Network) bool {
	if m.FromStop == "" && m.ToStop == "" {
		m.addError("At least one of fromStop and toStop must be supplied.")
	}
	if m.FromStop != "" {
		idx, ok := n.StopIndex(m.FromStop)
		if !ok {
			m.addError("Could not find fromStop with GTFS ID %s.", m.FromStop)
		}
		m.intFromStop = idx
	}
	if m.ToStop != "" {
		idx, ok := n.StopIndex(m.ToStop)
		if !ok {
			m.addError("Could not find toStop with GTFS ID %s.", m.ToStop)
		}
		m.intToStop = idx
	}
	if len(m.DwellTimes) != len(m.Stops) {
		m.addError("The number of dwell times must exactly match the number of new stops (%d dwells for %d stops).",
			len(m.DwellTimes), len(m.Stops))
	}
	expectedHops := len(m.Stops)
	if m.FromStop != "" && m.ToStop != "" {
		expectedHops++
	}
	if len(m.HopTimes) != expectedHops {
		m.addError("The number of hops must equal the number of new stops, plus one when both fromStop and toStop are supplied (got %d, want %d).",
			len(m.HopTimes), expectedHops)
	}
	m.intNewStops, _ = findOrCreateStops(&m.baseModification, m.Stops, n)
	m.routeSet = stringSet(m.Routes)
	return m.hasErrors()
}

func (m *AddStops) Apply(n *network.Network) bool {
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
		m.addWarning("No patterns matched the insertion anchors; the network is unchanged.")
	} else {
		m.addInfo("Inserted stops into %d patterns.", patternsAffected)
	}
	return m.hasErrors()
}

func (m *AddStops) processPattern(p *network.TripPattern) *network.TripPattern {
	if m.routeSet != nil && !m.routeSet[p.RouteID] {
		return p
	}
	begin, end, matched, err := p.SpliceRange(m.intFromStop, m.intToStop, m.FromStop != "", m.ToStop != "")
	if err != nil {
		m.addError("On a pattern of route %s: %v", p.RouteID, err)
		return p
	}
	if !matched {
		// Other patterns on the same route may serve different stops; an
		// anchor missing from this one is not an error.
		return p
	}
	return p.ApplySplice(network.Splice{
		Begin:      begin,
		End:        end,
		NewStops:   m.intNewStops,
		HopTimes:   m.HopTimes,
		DwellTimes: m.DwellTimes,
	})
}
