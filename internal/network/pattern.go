package network

import (
	"fmt"
)

// PickDrop is a GTFS pickup_type/drop_off_type code.
type PickDrop int

const (
	PickDropScheduled   PickDrop = 0
	PickDropNone        PickDrop = 1
	PickDropCallAgency  PickDrop = 2
	PickDropCoordinated PickDrop = 3
)

// TripPattern is a unique sequence of stops visited by one or more trips of a
// route, with per-stop boarding rules and the timetables of all its trips.
//
// Patterns are immutable once attached to a Network. Editing operations
// produce a new pattern via cloneShell, which shares no slice storage with
// the original.
type TripPattern struct {
	// OriginalID is a stable identifier carried over from the baseline
	// pattern through any number of edits, for diffing and reporting.
	OriginalID string

	RouteID     string
	DirectionID int

	Stops                []int
	Pickups              []PickDrop
	Dropoffs             []PickDrop
	WheelchairAccessible []bool

	Trips []*TripSchedule

	// Shape is the encoded polyline alignment, nil when unknown. Edits that
	// change the stop sequence drop it rather than guess a new alignment.
	Shape []byte

	HasFrequencies bool
	HasSchedules   bool
}

// cloneShell copies pattern metadata and allocates fresh per-stop arrays of
// the given length and an empty trip list. Nothing is shared with p except
// immutable strings; callers fill in the arrays and trips.
func (p *TripPattern) cloneShell(newLength int) *TripPattern {
	return &TripPattern{
		OriginalID:           p.OriginalID,
		RouteID:              p.RouteID,
		DirectionID:          p.DirectionID,
		Stops:                make([]int, newLength),
		Pickups:              make([]PickDrop, newLength),
		Dropoffs:             make([]PickDrop, newLength),
		WheelchairAccessible: make([]bool, newLength),
		Trips:                make([]*TripSchedule, 0, len(p.Trips)),
		HasFrequencies:       p.HasFrequencies,
		HasSchedules:         p.HasSchedules,
	}
}

// CloneForTripReplacement copies the pattern with its stop sequence, flags,
// and shape intact but an empty trip list, for edits that replace the
// timetables while leaving the stops alone.
func (p *TripPattern) CloneForTripReplacement() *TripPattern {
	c := p.cloneShell(len(p.Stops))
	copy(c.Stops, p.Stops)
	copy(c.Pickups, p.Pickups)
	copy(c.Dropoffs, p.Dropoffs)
	copy(c.WheelchairAccessible, p.WheelchairAccessible)
	c.Shape = p.Shape
	return c
}

// ContainsNoTrips reports whether none of the given trip IDs run on this
// pattern. Modifications use example trip IDs to select whole patterns.
func (p *TripPattern) ContainsNoTrips(tripIDs map[string]bool) bool {
	for _, t := range p.Trips {
		if tripIDs[t.TripID] {
			return false
		}
	}
	return true
}

// StopPosition returns the first position of the given stop index in the
// pattern's stop sequence. Loop routes can visit a stop twice; only the
// first visit is addressable, a known limitation shared with the matching
// rules for removals.
func (p *TripPattern) StopPosition(stop int) (int, bool) {
	for i, s := range p.Stops {
		if s == stop {
			return i, true
		}
	}
	return 0, false
}

// SpliceRange locates the half-open range [begin, end) of stop positions that
// a splice between fromStop and toStop replaces. hasFrom/hasTo distinguish
// "anchor not supplied" from any stop index value.
//
// With no from anchor the range starts at position 0; with no to anchor it
// extends to the end of the pattern. A supplied anchor that does not appear
// in this pattern makes the pattern unmatched, which is not an error. An
// inverted range (to before or at from) is a validation error.
func (p *TripPattern) SpliceRange(fromStop, toStop int, hasFrom, hasTo bool) (begin, end int, matched bool, err error) {
	begin, end = -1, -1
	for s, stop := range p.Stops {
		if hasFrom && stop == fromStop {
			begin = s + 1
		}
		if hasTo && stop == toStop {
			end = s
		}
	}
	if !hasFrom {
		begin = 0
	}
	if !hasTo {
		end = len(p.Stops)
	}
	if begin == -1 || end == -1 {
		return 0, 0, false, nil
	}
	if end < begin {
		return 0, 0, false, fmt.Errorf("the end of the insertion region must be at or after its beginning")
	}
	return begin, end, true, nil
}

// CheckConsistent verifies the structural invariants of the pattern and all
// its trips: parallel per-stop arrays of equal length, and nondecreasing,
// alternating arrival/departure times on every schedule.
func (p *TripPattern) CheckConsistent() error {
	n := len(p.Stops)
	if len(p.Pickups) != n || len(p.Dropoffs) != n || len(p.WheelchairAccessible) != n {
		return fmt.Errorf("per-stop arrays have mismatched lengths (%d stops, %d pickups, %d dropoffs, %d accessibility)",
			n, len(p.Pickups), len(p.Dropoffs), len(p.WheelchairAccessible))
	}
	for _, t := range p.Trips {
		if err := t.CheckConsistent(n); err != nil {
			return fmt.Errorf("trip %s: %w", t.TripID, err)
		}
	}
	return nil
}
