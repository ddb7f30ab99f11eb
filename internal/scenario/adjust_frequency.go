package scenario

import (
	"shunt.transitlab.org/internal/network"
)

// AdjustFrequency converts a route to frequency-based service. Each entry
// names a source trip whose stop pattern and travel times become the
// template for a frequency entry with the given headway and window; all
// other trips on the route are dropped, so short-turn variants cannot
// accidentally survive without a specified frequency. The template times
// are rebased to start at zero.
//
// With DropTripsOutsideTimePeriod false, scheduled trips that start outside
// every entry's window are retained on the days no entry covers.
type AdjustFrequency struct {
	baseModification

	Route string `json:"route"`

	Entries []PatternTimetable `json:"entries,omitempty"`

	// DropTripsOutsideTimePeriod removes all scheduled trips on the route,
	// not just those inside the converted windows. Defaults to true.
	DropTripsOutsideTimePeriod bool `json:"dropTripsOutsideTimePeriod"`

	entriesByTrip map[string][]PatternTimetable
}

func (m *AdjustFrequency) Type() string   { return TypeAdjustFrequency }
func (m *AdjustFrequency) SortOrder() int { return 50 }

func (m *AdjustFrequency) Resolve(n *network.Network) bool {
	if m.Route == "" {
		m.addError("You must supply a route to adjust.")
	} else if !n.HasRoute(m.Route) {
		m.addError("Could not find a route with GTFS ID %s.", m.Route)
	}
	if len(m.Entries) == 0 {
		m.addError("You must supply at least one frequency entry.")
	}
	for _, entry := range m.Entries {
		if entry.SourceTrip == "" {
			m.addError("Every frequency entry must name a source trip.")
		} else if !n.HasTrip(entry.SourceTrip) {
			m.addError("Could not find a trip with GTFS ID %s.", entry.SourceTrip)
		}
		if entry.EndTime <= entry.StartTime {
			m.addError("End time is not later than start time.")
		}
		if entry.HeadwaySecs <= 0 {
			m.addError("Headway is not greater than zero.")
		}
	}
	return m.hasErrors()
}

func (m *AdjustFrequency) Apply(n *network.Network) bool {
	m.entriesByTrip = make(map[string][]PatternTimetable)
	for _, entry := range m.Entries {
		m.entriesByTrip[entry.SourceTrip] = append(m.entriesByTrip[entry.SourceTrip], entry)
	}
	out := make([]*network.TripPattern, 0, len(n.Patterns))
	converted := 0
	for _, p := range n.Patterns {
		edited := m.processPattern(p, n)
		if edited != nil {
			out = append(out, edited)
		}
		if edited != p {
			converted++
		}
	}
	n.Patterns = out
	n.RefreshServiceFlags()
	if converted == 0 {
		m.addError("No patterns were converted to frequency service; check the source trip IDs.")
	} else {
		m.addInfo("Converted %d patterns of route %s to frequency service.", converted, m.Route)
	}
	return m.hasErrors()
}

func (m *AdjustFrequency) processPattern(p *network.TripPattern, n *network.Network) *network.TripPattern {
	if p.RouteID != m.Route {
		return p
	}
	newPattern := p.CloneForTripReplacement()
	schedulesRetained := false
	for _, original := range p.Trips {
		for _, entry := range m.entriesByTrip[original.TripID] {
			newPattern.Trips = append(newPattern.Trips, m.frequencyTripFrom(original, entry, n))
		}
		if !m.DropTripsOutsideTimePeriod {
			if original.IsFrequency() {
				m.addWarning("Retaining existing frequency entries when adjusting timetables is not supported; trip %s dropped.", original.TripID)
			} else if retained := m.retainOutsideWindows(original, n); retained != nil {
				newPattern.Trips = append(newPattern.Trips, retained)
				schedulesRetained = true
			}
		}
	}
	if len(newPattern.Trips) == 0 {
		// None of this pattern's trips appear in the frequency entries.
		return nil
	}
	newPattern.HasFrequencies = true
	newPattern.HasSchedules = schedulesRetained
	return newPattern
}

// frequencyTripFrom derives one frequency trip from a source trip: the same
// shape of arrivals and departures rebased to zero, with the entry's window
// and headway, running on a newly created service.
func (m *AdjustFrequency) frequencyTripFrom(original *network.TripSchedule, entry PatternTimetable, n *network.Network) *network.TripSchedule {
	nStops := len(original.Arrivals)
	trip := original.CloneScheduleShell(nStops)
	offset := original.Arrivals[0]
	for i := 0; i < nStops; i++ {
		trip.Arrivals[i] = original.Arrivals[i] - offset
		trip.Departures[i] = original.Departures[i] - offset
	}
	trip.HeadwaySeconds = []int{entry.HeadwaySecs}
	trip.StartTimes = []int{entry.StartTime}
	trip.EndTimes = []int{entry.EndTime}
	trip.ServiceCode = len(n.Services)
	n.Services = append(n.Services, createService(entry))
	return trip
}

// retainOutsideWindows keeps a scheduled trip on the days not covered by any
// entry whose window contains the trip's start. Returns nil when no day of
// service remains.
func (m *AdjustFrequency) retainOutsideWindows(original *network.TripSchedule, n *network.Network) *network.TripSchedule {
	retainDays := [7]bool{true, true, true, true, true, true, true}
	tripStart := original.Departures[0]
	for _, entry := range m.Entries {
		if entry.StartTime < tripStart && entry.EndTime > tripStart {
			days := entry.activeDays()
			for d := range retainDays {
				retainDays[d] = retainDays[d] && !days[d]
			}
		}
	}
	if original.ServiceCode < 0 || original.ServiceCode >= len(n.Services) {
		return nil
	}
	originalService := n.Services[original.ServiceCode]
	newService := originalService
	hasAnyService := false
	for d := range newService.Days {
		newService.Days[d] = originalService.Days[d] && retainDays[d]
		if newService.Days[d] {
			hasAnyService = true
		}
	}
	if !hasAnyService {
		return nil
	}
	retained := original.CloneScheduleShell(len(original.Arrivals))
	copy(retained.Arrivals, original.Arrivals)
	copy(retained.Departures, original.Departures)
	retained.ServiceCode = len(n.Services)
	n.Services = append(n.Services, newService)
	return retained
}
