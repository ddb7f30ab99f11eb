package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// AdjustDwellTime sets or scales how long vehicles wait at stops. With no
// stop list every stop on the matched trips is adjusted; later arrival and
// departure times shift cumulatively while each trip's start time and all
// ride times are preserved.
//
// Exactly one of DwellSecs (an absolute value, zero allowed) or Scale (a
// multiplier on the existing dwell) must be supplied.
type AdjustDwellTime struct {
	baseModification

	Routes []string `json:"routes,omitempty"`

	// Patterns holds example trip IDs identifying whole patterns to adjust.
	Patterns []string `json:"patterns,omitempty"`

	Trips []string `json:"trips,omitempty"`

	// Stops restricts the adjustment to the listed stops.
	Stops []string `json:"stops,omitempty"`

	DwellSecs *int     `json:"dwellSecs,omitempty"`
	Scale     *float64 `json:"scale,omitempty"`

	intStops   map[int]bool
	routeSet   map[string]bool
	patternSet map[string]bool
	tripSet    map[string]bool
}

func (m *AdjustDwellTime) Type() string   { return TypeAdjustDwellTime }
func (m *AdjustDwellTime) SortOrder() int { return 20 }

func (m *AdjustDwellTime) Resolve(n *network.Network) bool {
	if (m.DwellSecs == nil) == (m.Scale == nil) {
		m.addError("Exactly one of dwellSecs and scale must be supplied.")
	}
	if m.DwellSecs != nil && *m.DwellSecs < 0 {
		m.addError("Dwell time must not be negative.")
	}
	if m.Scale != nil && *m.Scale < 0 {
		m.addError("Dwell scaling factor must not be negative.")
	}
	if len(m.Stops) > 0 {
		m.intStops = m.resolveStops(m.Stops, n)
	}
	m.checkIDs(m.Routes, m.Patterns, m.Trips, true, n)
	m.routeSet = stringSet(m.Routes)
	m.patternSet = stringSet(m.Patterns)
	m.tripSet = stringSet(m.Trips)
	return m.hasErrors()
}

func (m *AdjustDwellTime) Apply(n *network.Network) bool {
	tripsAffected := 0
	out := make([]*network.TripPattern, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		edited, nTrips := m.processPattern(p)
		out = append(out, edited)
		tripsAffected += nTrips
	}
	n.Patterns = out
	if tripsAffected > 0 {
		m.addInfo("Adjusted dwell times on %d trips.", tripsAffected)
	} else {
		m.addError("This modification did not cause any changes to the network.")
	}
	return m.hasErrors()
}

func (m *AdjustDwellTime) processPattern(p *network.TripPattern) (*network.TripPattern, int) {
	if m.routeSet != nil && !m.routeSet[p.RouteID] {
		return p, 0
	}
	if m.patternSet != nil && p.ContainsNoTrips(m.patternSet) {
		return p, 0
	}
	if m.tripSet != nil && p.ContainsNoTrips(m.tripSet) {
		return p, 0
	}
	if m.intStops != nil {
		// Skip patterns serving none of the selected stops before cloning.
		serves := false
		for _, s := range p.Stops {
			if m.intStops[s] {
				serves = true
				break
			}
		}
		if !serves {
			return p, 0
		}
	}
	var atStop func(int) bool
	if m.intStops != nil {
		atStop = func(s int) bool { return m.intStops[s] }
	}
	var tripFilter func(string) bool
	if m.tripSet != nil {
		tripFilter = func(id string) bool { return m.tripSet[id] }
	}
	dwellSecs := 0
	scale := 0.0
	useScale := m.Scale != nil
	if useScale {
		scale = *m.Scale
	} else if m.DwellSecs != nil {
		dwellSecs = *m.DwellSecs
	}
	return p.AdjustPatternDwells(atStop, tripFilter, dwellSecs, scale, useScale)
}
