package scenario

import (
	"fmt"

	"shunt.transitlab.org/internal/network"
)

// AddTrips creates a brand-new trip pattern from a list of stop specs and
// adds frequency-based trips to it. Stops may reference existing ones or be
// created inline. With Bidirectional set, a mirrored pattern with reversed
// stops, hops, and dwells is created as well.
//
// Entries with ExactTimes instead explode into individually scheduled trips
// departing every headway through the window.
type AddTrips struct {
	baseModification

	// RouteID labels the new pattern. It may name an existing route or a
	// new one, which is created with the given mode.
	RouteID string `json:"routeId,omitempty"`

	Stops []StopSpec `json:"stops,omitempty"`

	Frequencies []PatternTimetable `json:"frequencies,omitempty"`

	// Mode is the GTFS route_type of a newly created route. Defaults to bus.
	Mode int `json:"mode,omitempty"`

	Bidirectional bool `json:"bidirectional"`

	intStopIDs []int
	tripSeq    int
}

func (m *AddTrips) Type() string   { return TypeAddTrips }
func (m *AddTrips) SortOrder() int { return 60 }

func (m *AddTrips) Resolve(n *network.Network) bool {
	if len(m.Stops) < 2 {
		m.addError("You must specify at least two stops when creating new trips.")
	}
	if len(m.Frequencies) == 0 {
		m.addError("You must supply at least one timetable entry.")
	}
	for _, pt := range m.Frequencies {
		if pt.EndTime <= pt.StartTime {
			m.addError("End time is not later than start time.")
		}
		if pt.HeadwaySecs <= 0 {
			m.addError("Headway is not greater than zero.")
		}
		if len(pt.DwellTimes) != len(m.Stops) {
			m.addError("The number of dwell times must be equal to the number of stops (%d dwells for %d stops).",
				len(pt.DwellTimes), len(m.Stops))
		}
		if len(pt.HopTimes) != len(m.Stops)-1 {
			m.addError("The number of hop times must be one less than the number of stops (%d hops for %d stops).",
				len(pt.HopTimes), len(m.Stops))
		}
	}
	m.intStopIDs, _ = findOrCreateStops(&m.baseModification, m.Stops, n)
	return m.hasErrors()
}

func (m *AddTrips) Apply(n *network.Network) bool {
	if m.RouteID != "" && !n.HasRoute(m.RouteID) {
		n.AddRoute(network.Route{ID: m.RouteID, Mode: m.Mode})
	}
	entries := make([]PatternTimetable, len(m.Frequencies))
	copy(entries, m.Frequencies)
	m.generatePattern(n, m.intStopIDs, entries, 0)
	if m.Bidirectional {
		reversedStops := reverseInts(m.intStopIDs)
		for i := range entries {
			entries[i].HopTimes = reverseInts(entries[i].HopTimes)
			entries[i].DwellTimes = reverseInts(entries[i].DwellTimes)
		}
		m.generatePattern(n, reversedStops, entries, 1)
	}
	return m.hasErrors()
}

func (m *AddTrips) generatePattern(n *network.Network, stops []int, entries []PatternTimetable, directionID int) {
	pattern := &network.TripPattern{
		OriginalID:           fmt.Sprintf("%s:added:%d", m.RouteID, directionID),
		RouteID:              m.RouteID,
		DirectionID:          directionID,
		Stops:                append([]int(nil), stops...),
		Pickups:              make([]network.PickDrop, len(stops)),
		Dropoffs:             make([]network.PickDrop, len(stops)),
		WheelchairAccessible: make([]bool, len(stops)),
		Shape:                network.StraightLineShape(n, stops),
	}
	for i := range pattern.WheelchairAccessible {
		pattern.WheelchairAccessible[i] = true
	}
	for _, entry := range entries {
		arrivals, departures := timetableTemplate(entry, len(stops))
		serviceCode := len(n.Services)
		n.Services = append(n.Services, createService(entry))
		if entry.ExactTimes {
			// One scheduled trip per departure through the window.
			for t := entry.StartTime; t < entry.EndTime; t += entry.HeadwaySecs {
				trip := &network.TripSchedule{
					TripID:      m.nextTripID(directionID),
					ServiceCode: serviceCode,
					Arrivals:    offsetTimes(arrivals, t),
					Departures:  offsetTimes(departures, t),
				}
				pattern.Trips = append(pattern.Trips, trip)
			}
			pattern.HasSchedules = true
		} else {
			trip := &network.TripSchedule{
				TripID:         m.nextTripID(directionID),
				ServiceCode:    serviceCode,
				Arrivals:       arrivals,
				Departures:     departures,
				HeadwaySeconds: []int{entry.HeadwaySecs},
				StartTimes:     []int{entry.StartTime},
				EndTimes:       []int{entry.EndTime},
			}
			pattern.Trips = append(pattern.Trips, trip)
			pattern.HasFrequencies = true
		}
	}
	n.Patterns = append(n.Patterns, pattern)
	n.RefreshServiceFlags()
	m.addInfo("Created pattern %s with %d trips.", pattern.OriginalID, len(pattern.Trips))
}

func (m *AddTrips) nextTripID(directionID int) string {
	m.tripSeq++
	return fmt.Sprintf("scenario:%s:new-trip:%d:%d", m.RouteID, directionID, m.tripSeq)
}

// timetableTemplate converts hop and dwell durations, which are relative to
// adjacent entries, into zero-based arrival and departure arrays.
func timetableTemplate(entry PatternTimetable, nStops int) (arrivals, departures []int) {
	arrivals = make([]int, nStops)
	departures = make([]int, nStops)
	t := 0
	for s := 0; s < nStops; s++ {
		arrivals[s] = t
		t += entry.DwellTimes[s]
		departures[s] = t
		if s < len(entry.HopTimes) {
			t += entry.HopTimes[s]
		}
	}
	return arrivals, departures
}

func offsetTimes(times []int, offset int) []int {
	out := make([]int, len(times))
	for i, t := range times {
		out[i] = t + offset
	}
	return out
}

func reverseInts(values []int) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}
