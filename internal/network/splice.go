package network

import (
	"fmt"
	"math"
	"strings"
)

// Splice describes a segment of new stops replacing the half-open range
// [Begin, End) of a pattern's stop positions.
//
// DwellTimes has one entry per new stop. HopTimes has one entry more than
// NewStops when the splice is interior (both anchors retained), and exactly
// len(NewStops) entries when it starts at position 0 or runs to the end of
// the pattern. ApplySplice assumes these counts were validated upstream.
type Splice struct {
	Begin int
	End   int

	NewStops   []int
	HopTimes   []int
	DwellTimes []int
}

// ApplySplice returns a copy of the pattern with the splice applied to the
// stop sequence and to every trip timetable. The original pattern and its
// trips are left untouched.
//
// Timetable times downstream of the splice keep their original ride and
// dwell durations but are shifted by the difference between the new segment
// and the replaced one. When the splice starts at position 0 the first new
// stop inherits the original first arrival time, keeping the trip's start
// offset fixed.
func (p *TripPattern) ApplySplice(sp Splice) *TripPattern {
	newLength := len(p.Stops) + len(sp.NewStops) - (sp.End - sp.Begin)
	pattern := p.cloneShell(newLength)
	// Splicing invalidates the stored alignment.
	pattern.Shape = nil

	// Copy the per-stop arrays, inserting the new stops at Begin and skipping
	// the replaced range. Newly inserted stops board and alight normally and
	// are assumed accessible.
	ss := 0
	ts := 0
	for ts < newLength {
		if ss == sp.Begin {
			for _, ns := range sp.NewStops {
				pattern.Stops[ts] = ns
				pattern.Pickups[ts] = PickDropScheduled
				pattern.Dropoffs[ts] = PickDropScheduled
				pattern.WheelchairAccessible[ts] = true
				ts++
			}
		}
		if ss >= sp.Begin && ss < sp.End {
			ss++
		}
		if ts < newLength {
			pattern.Stops[ts] = p.Stops[ss]
			pattern.Pickups[ts] = p.Pickups[ss]
			pattern.Dropoffs[ts] = p.Dropoffs[ss]
			pattern.WheelchairAccessible[ts] = p.WheelchairAccessible[ss]
			ss++
			ts++
		}
	}

	for _, original := range p.Trips {
		schedule := original.cloneShell(newLength)
		pattern.Trips = append(pattern.Trips, schedule)

		prevOutputDeparture := 0
		ss = 0
		ts = 0
		for ts < newLength {
			spliceArrivalTime := -1
			if ss == sp.Begin {
				// The dwell at a given index is not always the dwell after the
				// hop at that index: there is one fewer dwell than hops on an
				// interior splice, so the two cursors advance independently.
				hop, dwell := 0, 0
				for hop < len(sp.HopTimes) {
					if ss == 0 && dwell == 0 {
						// Inserting at the start of the trip. The first new
						// stop has no preceding hop and keeps the original
						// first arrival time; consume one dwell only.
						schedule.Arrivals[ts] = original.Arrivals[0]
						schedule.Departures[ts] = schedule.Arrivals[ts] + sp.DwellTimes[dwell]
						prevOutputDeparture = schedule.Departures[ts]
						dwell++
						ts++
					}
					spliceArrivalTime = prevOutputDeparture + sp.HopTimes[hop]
					hop++
					// The final hop of an interior splice has no dwell of its
					// own; its arrival time carries over to the retained stop
					// written by the copy step below.
					if dwell < len(sp.DwellTimes) {
						schedule.Arrivals[ts] = spliceArrivalTime
						schedule.Departures[ts] = schedule.Arrivals[ts] + sp.DwellTimes[dwell]
						prevOutputDeparture = schedule.Departures[ts]
						dwell++
						ts++
					}
				}
			}

			for ss >= sp.Begin && ss < sp.End {
				ss++
			}

			if ts < newLength {
				arrivalTime := spliceArrivalTime
				if arrivalTime < 0 {
					arrivalTime = prevOutputDeparture + original.RideTimeInto(ss)
				}
				schedule.Arrivals[ts] = arrivalTime
				schedule.Departures[ts] = arrivalTime + original.DwellAt(ss)
				prevOutputDeparture = schedule.Departures[ts]
				ts++
				ss++
			}
		}
	}
	return pattern
}

// RemoveFromPattern removes every stop for which remove reports true from the
// pattern and all its trips, compressing the saved ride and dwell time out of
// the timetables. It returns the edited copy, any warnings generated, and
// whether the pattern was affected at all.
//
// When no stop of the pattern matches, the original pattern is returned
// unchanged and unaffected. When every stop matches, the returned pattern is
// nil: the pattern vanishes from the network.
//
// secondsSaved additionally shortens the schedule by that many seconds per
// removed stop, modeling saved deceleration and boarding overhead. If that
// would drive a segment's travel time negative, the segment is clamped to
// one second and a warning names the stops responsible. Dwell time at a
// removed stop is folded into the preserved offset only while the output
// trip is still empty, so removals at the start of a trip do not shift the
// remaining times.
func (p *TripPattern) RemoveFromPattern(remove func(stop int) bool, secondsSaved int, net *Network) (*TripPattern, []string, bool) {
	oldLength := len(p.Stops)
	nToRemove := 0
	for _, s := range p.Stops {
		if remove(s) {
			nToRemove++
		}
	}
	if nToRemove == 0 {
		return p, nil, false
	}
	if nToRemove == oldLength {
		return nil, nil, true
	}

	newLength := oldLength - nToRemove
	pattern := p.cloneShell(newLength)
	pattern.Shape = nil

	removeStop := make([]bool, oldLength)
	for i, j := 0, 0; i < oldLength; i++ {
		if remove(p.Stops[i]) {
			removeStop[i] = true
		} else {
			pattern.Stops[j] = p.Stops[i]
			pattern.Pickups[j] = p.Pickups[i]
			pattern.Dropoffs[j] = p.Dropoffs[i]
			pattern.WheelchairAccessible[j] = p.WheelchairAccessible[i]
			j++
		}
	}

	var warnings []string
	for _, original := range p.Trips {
		schedule := original.cloneShell(newLength)
		pattern.Trips = append(pattern.Trips, schedule)

		accumulatedRideTime := 0
		prevOutputDeparture := 0
		removedSinceLastStop := 0
		for i, j := 0, 0; i < oldLength; i++ {
			rideTime := original.RideTimeInto(i)
			dwellTime := original.DwellAt(i)
			if removeStop[i] {
				accumulatedRideTime += rideTime
				removedSinceLastStop++
				if j == 0 {
					// Keep the offset of the first retained arrival fixed by
					// folding in dwells only before anything has been output.
					accumulatedRideTime += dwellTime
				}
				continue
			}
			accumulatedRideTime += rideTime
			secondsToRemove := secondsSaved * removedSinceLastStop
			if removedSinceLastStop > 0 && accumulatedRideTime < secondsToRemove {
				perStop := (accumulatedRideTime - 1) / removedSinceLastStop
				warnings = append(warnings, negativeTravelTimeWarning(
					p.Stops[i-removedSinceLastStop:i], original.TripID, secondsSaved, perStop, net))
				secondsToRemove = accumulatedRideTime - 1
			}
			schedule.Arrivals[j] = prevOutputDeparture + accumulatedRideTime - secondsToRemove
			schedule.Departures[j] = schedule.Arrivals[j] + dwellTime
			prevOutputDeparture = schedule.Departures[j]
			accumulatedRideTime = 0
			removedSinceLastStop = 0
			j++
		}
	}
	return pattern, warnings, true
}

func negativeTravelTimeWarning(problemStops []int, tripID string, requested, actual int, net *Network) string {
	names := make([]string, len(problemStops))
	for i, stop := range problemStops {
		names[i] = fmt.Sprintf("%q (%s)", net.StopNameForIndex(stop), net.StopIDForIndex(stop))
	}
	return fmt.Sprintf(
		"Removing the requested %d seconds at stops %s on trip %s would cause negative travel time. Removing %d seconds at each instead, leaving 1 second of travel time for whole segment.",
		requested, strings.Join(names, ", "), tripID, actual)
}

// InsertStopAfter returns a copy of the pattern with one stop inserted
// immediately after the given position, splitting the following hop. Each
// trip's ride time across that hop, plus extraTravelTime, is divided evenly
// between the two hops around the new stop; the new stop dwells for
// dwellTime seconds. position must not be the pattern's last stop, since
// there is then no following hop to split.
func (p *TripPattern) InsertStopAfter(position, stop, dwellTime, extraTravelTime int) *TripPattern {
	oldLength := len(p.Stops)
	newLength := oldLength + 1
	pattern := p.cloneShell(newLength)
	pattern.Shape = nil
	for i, j := 0, 0; i < oldLength; i, j = i+1, j+1 {
		pattern.Stops[j] = p.Stops[i]
		pattern.Pickups[j] = p.Pickups[i]
		pattern.Dropoffs[j] = p.Dropoffs[i]
		pattern.WheelchairAccessible[j] = p.WheelchairAccessible[i]
		if i == position {
			j++
			pattern.Stops[j] = stop
			pattern.Pickups[j] = PickDropScheduled
			pattern.Dropoffs[j] = PickDropScheduled
			pattern.WheelchairAccessible[j] = p.WheelchairAccessible[i]
		}
	}
	for _, original := range p.Trips {
		schedule := original.cloneShell(newLength)
		pattern.Trips = append(pattern.Trips, schedule)
		prevOutputDeparture := 0
		for i, j := 0, 0; i < oldLength; i, j = i+1, j+1 {
			rideTime := original.RideTimeInto(i)
			dwell := original.DwellAt(i)
			if i == position+1 {
				rideTime += extraTravelTime
				rideBefore := rideTime / 2
				schedule.Arrivals[j] = prevOutputDeparture + rideBefore
				schedule.Departures[j] = schedule.Arrivals[j] + dwellTime
				prevOutputDeparture = schedule.Departures[j]
				rideTime -= rideBefore
				j++
			}
			schedule.Arrivals[j] = prevOutputDeparture + rideTime
			schedule.Departures[j] = schedule.Arrivals[j] + dwell
			prevOutputDeparture = schedule.Departures[j]
		}
	}
	return pattern
}

// RescaleHops multiplies the ride time of selected hops (and optionally all
// dwells) by timeScale on the trips selected by tripFilter, returning the
// edited copy and the number of trips changed. A nil tripFilter selects
// every trip; unselected trips are carried into the copy by reference.
//
// scaleHop has one entry per hop (one less than the pattern's stops). Times
// accumulate in floating point from the first arrival and are rounded per
// stop, so truncation error does not build up along the trip.
func (p *TripPattern) RescaleHops(scaleHop []bool, timeScale float64, scaleDwells bool, tripFilter func(tripID string) bool) (*TripPattern, int) {
	nStops := len(p.Stops)
	pattern := p.cloneShell(nStops)
	copy(pattern.Stops, p.Stops)
	copy(pattern.Pickups, p.Pickups)
	copy(pattern.Dropoffs, p.Dropoffs)
	copy(pattern.WheelchairAccessible, p.WheelchairAccessible)
	pattern.Shape = p.Shape

	tripsAffected := 0
	for _, original := range p.Trips {
		if tripFilter != nil && !tripFilter(original.TripID) {
			pattern.Trips = append(pattern.Trips, original)
			continue
		}
		schedule := original.cloneShell(nStops)
		pattern.Trips = append(pattern.Trips, schedule)

		seconds := float64(original.Arrivals[0])
		for s := 0; s < nStops; s++ {
			schedule.Arrivals[s] = roundSeconds(seconds)
			dwell := float64(original.DwellAt(s))
			if scaleDwells {
				seconds += dwell * timeScale
			} else {
				seconds += dwell
			}
			schedule.Departures[s] = roundSeconds(seconds)
			if s < nStops-1 {
				ride := float64(original.RideTimeInto(s + 1))
				if scaleHop[s] {
					seconds += ride * timeScale
				} else {
					seconds += ride
				}
			}
		}
		tripsAffected++
	}
	return pattern, tripsAffected
}

// AdjustPatternDwells rewrites the dwell time at every selected stop on the
// selected trips, either to a fixed number of seconds or scaled by a factor,
// shifting all later times accordingly. Ride times and the trip's first
// arrival are preserved. Returns the edited copy and the number of trips
// changed; unselected trips are carried by reference.
func (p *TripPattern) AdjustPatternDwells(atStop func(stop int) bool, tripFilter func(tripID string) bool, dwellSecs int, scale float64, useScale bool) (*TripPattern, int) {
	nStops := len(p.Stops)
	pattern := p.cloneShell(nStops)
	copy(pattern.Stops, p.Stops)
	copy(pattern.Pickups, p.Pickups)
	copy(pattern.Dropoffs, p.Dropoffs)
	copy(pattern.WheelchairAccessible, p.WheelchairAccessible)
	pattern.Shape = p.Shape

	tripsAffected := 0
	for _, original := range p.Trips {
		if tripFilter != nil && !tripFilter(original.TripID) {
			pattern.Trips = append(pattern.Trips, original)
			continue
		}
		schedule := original.cloneShell(nStops)
		pattern.Trips = append(pattern.Trips, schedule)

		t := original.Arrivals[0]
		for s := 0; s < nStops; s++ {
			schedule.Arrivals[s] = t
			dwell := original.DwellAt(s)
			if atStop == nil || atStop(p.Stops[s]) {
				if useScale {
					dwell = roundSeconds(float64(dwell) * scale)
				} else {
					dwell = dwellSecs
				}
			}
			t += dwell
			schedule.Departures[s] = t
			if s < nStops-1 {
				t += original.RideTimeInto(s + 1)
			}
		}
		tripsAffected++
	}
	return pattern, tripsAffected
}

func roundSeconds(seconds float64) int {
	return int(math.Round(seconds))
}
