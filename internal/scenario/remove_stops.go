package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// RemoveStops removes stops and their dwell times from every trip of the
// selected routes or patterns. Removed stops are no longer served; removing
// stops at the start of a trip leaves the remaining absolute times in place.
//
// Removing stops from some trips but not others on a pattern would create a
// new pattern, so selection is by route or pattern, never individual trips.
// A stop appearing twice on a loop route is removed at every occurrence.
type RemoveStops struct {
	baseModification

	Routes []string `json:"routes,omitempty"`

	// Patterns holds example trip IDs identifying the patterns to edit.
	Patterns []string `json:"patterns,omitempty"`

	Stops []string `json:"stops,omitempty"`

	// SecondsSavedAtEachStop additionally shortens the schedule at each
	// removed stop, beyond the dwell time, for saved deceleration and
	// boarding overhead.
	SecondsSavedAtEachStop int `json:"secondsSavedAtEachStop,omitempty"`

	intStops   map[int]bool
	routeSet   map[string]bool
	patternSet map[string]bool
}

func (m *RemoveStops) Type() string   { return TypeRemoveStops }
func (m *RemoveStops) SortOrder() int { return 30 }

func (m *RemoveStops) Resolve(n *network.Network) bool {
	m.checkIDs(m.Routes, m.Patterns, nil, false, n)
	if len(m.Stops) == 0 {
		m.addError("You must supply some stops to remove.")
	} else {
		m.intStops = m.resolveStops(m.Stops, n)
	}
	m.routeSet = stringSet(m.Routes)
	m.patternSet = stringSet(m.Patterns)
	return m.hasErrors()
}

func (m *RemoveStops) Apply(n *network.Network) bool {
	patternsAffected := 0
	out := make([]*network.TripPattern, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		if m.routeSet != nil && !m.routeSet[p.RouteID] {
			out = append(out, p)
			continue
		}
		if m.patternSet != nil && p.ContainsNoTrips(m.patternSet) {
			out = append(out, p)
			continue
		}
		edited, warnings, affected := p.RemoveFromPattern(func(s int) bool { return m.intStops[s] }, m.SecondsSavedAtEachStop, n)
		m.warnings = append(m.warnings, warnings...)
		if affected {
			patternsAffected++
		}
		if edited != nil {
			out = append(out, edited)
		}
	}
	n.Patterns = out
	if patternsAffected > 0 {
		m.addInfo("Stops were removed from %d patterns.", patternsAffected)
	} else {
		m.addError("No patterns had any stops removed by this modification.")
	}
	return m.hasErrors()
}
