// Package scenario implements non-destructive edits to a transit network.
// A Scenario is an ordered list of modifications applied on top of a baseline
// network copy; patterns the modifications do not touch are shared with the
// baseline by reference.
package scenario

import (
	"fmt"

	"shunt.transitlab.org/internal/network"
)

// Modification type discriminants, used in the JSON descriptors.
const (
	TypeAdjustSpeed     = "adjust-speed"
	TypeAdjustDwellTime = "adjust-dwell-time"
	TypeRemoveStops     = "remove-stops"
	TypeAddStops        = "add-stops"
	TypeInsertStop      = "insert-stop"
	TypeAdjustFrequency = "adjust-frequency"
	TypeAddTrips        = "add-trips"
)

// Modification is one edit in a scenario. A modification instance moves
// through a strict lifecycle: Resolve converts string identifiers to network
// indices and validates parameter counts, accumulating errors; Apply
// transforms the network's patterns. Apply must never run when Resolve
// reported errors, and an instance is used against exactly one network copy.
type Modification interface {
	// Type returns the descriptor discriminant for this modification.
	Type() string

	// SortOrder determines the order modifications run in within a scenario.
	// Lower values run first; ties keep their declared order.
	SortOrder() int

	// Resolve validates the modification against the network and caches
	// integer indices. Returns true when errors were found.
	Resolve(n *network.Network) bool

	// Apply edits the network's pattern list in place (the list itself, not
	// the patterns, which are cloned copy-on-write). Returns true when
	// errors were found.
	Apply(n *network.Network) bool

	Errors() []string
	Warnings() []string
	Info() []string
}

// baseModification accumulates the human-readable messages every
// modification reports back to the operator. Errors block or abort the
// scenario, warnings and info do not.
type baseModification struct {
	errors   []string
	warnings []string
	info     []string

	// spatial indexes the network's stops for proximity checks when a
	// modification creates new stops. Built on first use against the one
	// network copy this instance resolves against.
	spatial *network.StopIndex
}

// stopIndex returns the spatial index over the network's stops, building it
// on first use.
func (m *baseModification) stopIndex(n *network.Network) *network.StopIndex {
	if m.spatial == nil {
		m.spatial = network.NewStopIndex(n)
	}
	return m.spatial
}

func (m *baseModification) addError(format string, args ...any) {
	m.errors = append(m.errors, fmt.Sprintf(format, args...))
}

func (m *baseModification) addWarning(format string, args ...any) {
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

func (m *baseModification) addInfo(format string, args ...any) {
	m.info = append(m.info, fmt.Sprintf(format, args...))
}

func (m *baseModification) hasErrors() bool { return len(m.errors) > 0 }

func (m *baseModification) Errors() []string   { return m.errors }
func (m *baseModification) Warnings() []string { return m.warnings }
func (m *baseModification) Info() []string     { return m.info }

// checkIDs validates the route/pattern/trip targeting filters shared by
// several modifications. Exactly one filter collection may be supplied.
// Route IDs are checked against the network's route table; pattern filters
// and trip filters hold example trip IDs and are checked against the trips
// actually present. Problems accumulate on the modification.
func (m *baseModification) checkIDs(routes, patterns, trips []string, tripsAllowed bool, n *network.Network) {
	supplied := 0
	if len(routes) > 0 {
		supplied++
	}
	if len(patterns) > 0 {
		supplied++
	}
	if len(trips) > 0 {
		supplied++
	}
	if supplied == 0 {
		if tripsAllowed {
			m.addError("You must supply either routes, patterns, or trips to select.")
		} else {
			m.addError("You must supply either routes or patterns to select.")
		}
		return
	}
	if supplied > 1 {
		m.addError("Routes, patterns, and trips are mutually exclusive ways of selecting; supply only one.")
	}
	if len(trips) > 0 && !tripsAllowed {
		m.addError("This modification type cannot select individual trips.")
	}
	for _, r := range routes {
		if !n.HasRoute(r) {
			m.addError("Could not find a route with GTFS ID %s.", r)
		}
	}
	for _, t := range patterns {
		if !n.HasTrip(t) {
			m.addError("Could not find a trip with GTFS ID %s to select its pattern.", t)
		}
	}
	for _, t := range trips {
		if !n.HasTrip(t) {
			m.addError("Could not find a trip with GTFS ID %s.", t)
		}
	}
}

// resolveStops looks up the named stops, accumulating an error for each one
// missing, and returns the set of resolved dense indices.
func (m *baseModification) resolveStops(stopIDs []string, n *network.Network) map[int]bool {
	resolved := make(map[int]bool, len(stopIDs))
	for _, id := range stopIDs {
		idx, ok := n.StopIndex(id)
		if !ok {
			m.addError("Could not find a stop with GTFS ID %s.", id)
			continue
		}
		resolved[idx] = true
	}
	return resolved
}

func stringSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
