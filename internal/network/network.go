// Package network holds the in-memory transit network model that scenario
// modifications operate on: a stop table with dense integer indices, routes,
// service calendars, and trip patterns with their per-trip timetables.
//
// Networks are edited copy-on-write. A scenario works against a ScenarioCopy
// of the baseline; patterns untouched by a modification are shared by
// reference between the baseline and the copy, so nothing here may ever
// mutate a pattern or schedule in place once it is part of a network.
package network

import (
	"fmt"
)

// Stop is one transit stop. Index positions in Network.Stops are the dense
// internal IDs used everywhere else in the model; they are assigned
// monotonically and never reused.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Route carries the route-level attributes the editing engine needs.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Mode      int
}

// Service is a calendar entry referenced by TripSchedule.ServiceCode.
// Days are Monday-first. StartDate and EndDate are yyyymmdd.
type Service struct {
	ID        string
	Days      [7]bool
	StartDate int
	EndDate   int
}

// ActiveOn reports whether the service runs on the given Monday-first weekday.
func (s Service) ActiveOn(weekday int) bool {
	return weekday >= 0 && weekday < 7 && s.Days[weekday]
}

// Network is a complete transit network snapshot.
type Network struct {
	Stops    []Stop
	Routes   []Route
	Services []Service
	Patterns []*TripPattern

	HasFrequencies bool
	HasSchedules   bool

	// FeedChecksums identifies the GTFS feeds this network was built from.
	// Verifying them against a scenario is the caller's job.
	FeedChecksums map[string]uint32

	indexForStopID map[string]int
	routeIDs       map[string]bool

	// Counter for generated IDs of stops created without an explicit ID.
	createdStops int
}

// New returns an empty network with its lookup tables initialized.
func New() *Network {
	return &Network{
		indexForStopID: map[string]int{},
		routeIDs:       map[string]bool{},
		FeedChecksums:  map[string]uint32{},
	}
}

// StopIndex looks up the dense index for an external stop ID. The boolean
// result distinguishes "not found" from index 0, which is a valid index.
func (n *Network) StopIndex(id string) (int, bool) {
	idx, ok := n.indexForStopID[id]
	return idx, ok
}

// StopIDForIndex returns the external ID for a dense stop index, or a
// placeholder when the index is out of range.
func (n *Network) StopIDForIndex(idx int) string {
	if idx < 0 || idx >= len(n.Stops) {
		return fmt.Sprintf("<invalid stop %d>", idx)
	}
	return n.Stops[idx].ID
}

// StopNameForIndex returns the human-readable name for a dense stop index.
func (n *Network) StopNameForIndex(idx int) string {
	if idx < 0 || idx >= len(n.Stops) {
		return fmt.Sprintf("<invalid stop %d>", idx)
	}
	return n.Stops[idx].Name
}

// AddStop appends a stop loaded from a feed and returns its dense index.
// Duplicate IDs keep the first definition, matching GTFS loader behavior.
func (n *Network) AddStop(s Stop) int {
	if idx, ok := n.indexForStopID[s.ID]; ok {
		return idx
	}
	idx := len(n.Stops)
	n.Stops = append(n.Stops, s)
	n.indexForStopID[s.ID] = idx
	return idx
}

// CreateStop appends a brand-new stop created by a scenario modification and
// returns its dense index. When id is empty a unique one is generated. The
// index space is shared with feed stops: newly created stops continue the
// same monotonic sequence, scoped to this network copy, so repeated scenario
// applications against the same baseline are deterministic.
func (n *Network) CreateStop(id, name string, lat, lon float64) int {
	if id == "" {
		n.createdStops++
		id = fmt.Sprintf("scenario:new-stop:%d", n.createdStops)
	}
	if name == "" {
		name = id
	}
	return n.AddStop(Stop{ID: id, Name: name, Lat: lat, Lon: lon})
}

// AddRoute registers a route. Duplicates are ignored.
func (n *Network) AddRoute(r Route) {
	if n.routeIDs[r.ID] {
		return
	}
	n.Routes = append(n.Routes, r)
	n.routeIDs[r.ID] = true
}

// HasRoute reports whether a route ID exists in the network.
func (n *Network) HasRoute(id string) bool {
	return n.routeIDs[id]
}

// HasTrip reports whether any pattern contains a trip with the given ID.
func (n *Network) HasTrip(tripID string) bool {
	for _, p := range n.Patterns {
		for _, t := range p.Trips {
			if t.TripID == tripID {
				return true
			}
		}
	}
	return false
}

// ScenarioCopy returns a copy of this network suitable for non-destructive
// editing. Top-level slices and lookup maps are fresh allocations so they can
// be extended, but the patterns themselves are shared by reference with the
// original; modifications clone individual patterns on their copy-on-write
// path.
func (n *Network) ScenarioCopy() *Network {
	c := &Network{
		Stops:          append([]Stop(nil), n.Stops...),
		Routes:         append([]Route(nil), n.Routes...),
		Services:       append([]Service(nil), n.Services...),
		Patterns:       append([]*TripPattern(nil), n.Patterns...),
		HasFrequencies: n.HasFrequencies,
		HasSchedules:   n.HasSchedules,
		FeedChecksums:  make(map[string]uint32, len(n.FeedChecksums)),
		indexForStopID: make(map[string]int, len(n.indexForStopID)),
		routeIDs:       make(map[string]bool, len(n.routeIDs)),
		createdStops:   n.createdStops,
	}
	for k, v := range n.FeedChecksums {
		c.FeedChecksums[k] = v
	}
	for k, v := range n.indexForStopID {
		c.indexForStopID[k] = v
	}
	for k, v := range n.routeIDs {
		c.routeIDs[k] = v
	}
	return c
}

// RefreshServiceFlags recomputes HasFrequencies/HasSchedules from the
// patterns. Called after modifications that convert or drop trips.
func (n *Network) RefreshServiceFlags() {
	n.HasFrequencies = false
	n.HasSchedules = false
	for _, p := range n.Patterns {
		if p.HasFrequencies {
			n.HasFrequencies = true
		}
		if p.HasSchedules {
			n.HasSchedules = true
		}
	}
}

// CheckConsistent validates every pattern in the network. Intended for tests
// and debug builds; a failure here means an edit produced a broken timetable.
func (n *Network) CheckConsistent() error {
	for _, p := range n.Patterns {
		if err := p.CheckConsistent(); err != nil {
			return fmt.Errorf("pattern on route %s: %w", p.RouteID, err)
		}
		for _, s := range p.Stops {
			if s < 0 || s >= len(n.Stops) {
				return fmt.Errorf("pattern on route %s references stop index %d outside the stop table", p.RouteID, s)
			}
		}
	}
	return nil
}
