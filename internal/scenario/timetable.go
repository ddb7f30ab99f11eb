package scenario

import (
	"strings"

	"shunt.transitlab.org/internal/network"
)

// PatternTimetable describes when trips run, either as a frequency entry or
// as a family of scheduled trips. AddTrips uses the hop and dwell arrays to
// build a brand-new timetable; AdjustFrequency instead copies times from
// SourceTrip and uses only the window, headway, and day fields.
type PatternTimetable struct {
	// SourceTrip names the trip whose travel and dwell times the frequency
	// entry is derived from. Used only by adjust-frequency.
	SourceTrip string `json:"sourceTrip,omitempty"`

	// HopTimes and DwellTimes define a new timetable. Used only by add-trips:
	// one dwell per stop, one hop per adjacent stop pair.
	HopTimes   []int `json:"hopTimes,omitempty"`
	DwellTimes []int `json:"dwellTimes,omitempty"`

	// StartTime and EndTime bound the service window in seconds since
	// GTFS midnight.
	StartTime int `json:"startTime"`
	EndTime   int `json:"endTime"`

	HeadwaySecs int `json:"headwaySecs"`

	// ExactTimes requests individually scheduled trips departing every
	// HeadwaySecs through the window instead of one frequency entry.
	ExactTimes bool `json:"exactTimes,omitempty"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// activeDays returns the Monday-first day booleans.
func (pt PatternTimetable) activeDays() [7]bool {
	return [7]bool{pt.Monday, pt.Tuesday, pt.Wednesday, pt.Thursday, pt.Friday, pt.Saturday, pt.Sunday}
}

// createService builds a calendar entry running on the timetable's active
// days. The date range is deliberately enormous so the service is always in
// effect regardless of the analysis date.
func createService(pt PatternTimetable) network.Service {
	days := pt.activeDays()
	var name strings.Builder
	name.WriteString("MOD-")
	for i, letter := range []byte("MTWTFSS") {
		if days[i] {
			name.WriteByte(letter)
		} else {
			name.WriteByte('x')
		}
	}
	return network.Service{
		ID:        name.String(),
		Days:      days,
		StartDate: 18500101,
		EndDate:   22000101,
	}
}
