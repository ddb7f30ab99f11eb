package network

import (
	"fmt"
)

// TripSchedule is the timetable of one trip on a pattern. Arrivals and
// Departures are seconds after midnight, one entry per pattern stop.
//
// A frequency-based trip additionally carries parallel HeadwaySeconds,
// StartTimes and EndTimes arrays, one entry per headway period; its
// arrival/departure arrays are then a zero-based template relative to each
// departure from the first stop.
type TripSchedule struct {
	TripID      string
	ServiceCode int

	Arrivals   []int
	Departures []int

	HeadwaySeconds []int
	StartTimes     []int
	EndTimes       []int
}

// IsFrequency reports whether this trip is frequency-based rather than
// running at fixed clock times.
func (t *TripSchedule) IsFrequency() bool {
	return len(t.HeadwaySeconds) > 0
}

// cloneShell copies trip metadata and frequency entries and allocates fresh
// arrival/departure arrays of the given length. The frequency arrays are
// copied, not aliased, so the clone can be edited freely.
func (t *TripSchedule) cloneShell(newLength int) *TripSchedule {
	return &TripSchedule{
		TripID:         t.TripID,
		ServiceCode:    t.ServiceCode,
		Arrivals:       make([]int, newLength),
		Departures:     make([]int, newLength),
		HeadwaySeconds: append([]int(nil), t.HeadwaySeconds...),
		StartTimes:     append([]int(nil), t.StartTimes...),
		EndTimes:       append([]int(nil), t.EndTimes...),
	}
}

// CloneScheduleShell copies trip metadata and frequency entries with fresh,
// zeroed arrival/departure arrays of the given length.
func (t *TripSchedule) CloneScheduleShell(newLength int) *TripSchedule {
	return t.cloneShell(newLength)
}

// RideTimeInto returns the travel time into stop position s from the previous
// stop's departure. Position 0 has no preceding hop, so it returns 0.
func (t *TripSchedule) RideTimeInto(s int) int {
	if s == 0 {
		return 0
	}
	return t.Arrivals[s] - t.Departures[s-1]
}

// DwellAt returns the dwell time at stop position s.
func (t *TripSchedule) DwellAt(s int) int {
	return t.Departures[s] - t.Arrivals[s]
}

// CheckConsistent verifies the schedule against a pattern of nStops stops:
// array lengths match, times alternate arrival <= departure, and each
// arrival is no earlier than the previous departure. Frequency entry arrays
// must be parallel.
func (t *TripSchedule) CheckConsistent(nStops int) error {
	if len(t.Arrivals) != nStops || len(t.Departures) != nStops {
		return fmt.Errorf("timetable has %d arrivals and %d departures for %d stops",
			len(t.Arrivals), len(t.Departures), nStops)
	}
	prevDeparture := 0
	for s := 0; s < nStops; s++ {
		if t.Arrivals[s] > t.Departures[s] {
			return fmt.Errorf("departure before arrival at stop position %d (%d > %d)",
				s, t.Arrivals[s], t.Departures[s])
		}
		if s > 0 && t.Arrivals[s] < prevDeparture {
			return fmt.Errorf("arrival at stop position %d precedes departure from position %d (%d < %d)",
				s, s-1, t.Arrivals[s], prevDeparture)
		}
		prevDeparture = t.Departures[s]
	}
	if len(t.StartTimes) != len(t.HeadwaySeconds) || len(t.EndTimes) != len(t.HeadwaySeconds) {
		return fmt.Errorf("frequency entry arrays have mismatched lengths (%d headways, %d starts, %d ends)",
			len(t.HeadwaySeconds), len(t.StartTimes), len(t.EndTimes))
	}
	for i, headway := range t.HeadwaySeconds {
		if headway <= 0 {
			return fmt.Errorf("frequency entry %d has nonpositive headway %d", i, headway)
		}
	}
	return nil
}
