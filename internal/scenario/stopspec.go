package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// Stops created this close to an existing stop are likely meant to be that
// stop; resolution warns instead of silently duplicating.
const duplicateStopRadiusMeters = 10.0

// StopSpec references a stop in an edit descriptor: either an existing stop
// by GTFS ID, or a brand-new stop defined inline by name and coordinates.
// The two forms are mutually exclusive and resolution rejects any mixture,
// so a typo can never silently create a duplicate stop.
type StopSpec struct {
	ID   string   `json:"id,omitempty"`
	Name string   `json:"name,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// resolve returns the dense index of the referenced stop, creating it in the
// network when defined inline. Problems accumulate on the modification and
// failure is signaled by the false return.
func (s StopSpec) resolve(m *baseModification, n *network.Network) (int, bool) {
	if s.ID != "" {
		if s.Name != "" || s.Lat != nil || s.Lon != nil {
			m.addError("A stop spec referencing existing stop %s must not also supply a name or coordinates.", s.ID)
			return 0, false
		}
		idx, ok := n.StopIndex(s.ID)
		if !ok {
			m.addError("Could not find a stop with GTFS ID %s.", s.ID)
			return 0, false
		}
		return idx, true
	}
	if s.Lat == nil || s.Lon == nil {
		m.addError("A stop spec creating a new stop must supply both lat and lon.")
		return 0, false
	}
	lat, lon := *s.Lat, *s.Lon
	if near, ok := m.stopIndex(n).Nearest(lat, lon, duplicateStopRadiusMeters); ok {
		m.addWarning("New stop \"%s\" is within %.0f meters of existing stop \"%s\" (%s); reference it by ID instead if it is the same stop.",
			s.Name, duplicateStopRadiusMeters, n.Stops[near].Name, n.Stops[near].ID)
	}
	idx := n.CreateStop("", s.Name, lat, lon)
	m.stopIndex(n).Insert(idx, lat, lon)
	return idx, true
}

// findOrCreateStops resolves a whole list of stop specs in order. New stops
// are appended to the network copy's stop table as they are encountered.
// Returns the resolved indices and whether every spec resolved.
func findOrCreateStops(m *baseModification, specs []StopSpec, n *network.Network) ([]int, bool) {
	indices := make([]int, 0, len(specs))
	allResolved := true
	for _, spec := range specs {
		idx, ok := spec.resolve(m, n)
		if !ok {
			allResolved = false
			continue
		}
		indices = append(indices, idx)
	}
	return indices, allResolved
}
