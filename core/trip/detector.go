// Package trip implements the vessel trip lifecycle: event detection,
// the per-vessel state machine, completion math and the orchestrator tick.
package trip

import "github.com/pugetops/ferrytrack/core/model"

// EventKind classifies an incoming location against the vessel's current
// active trip. It is the single decision point for all downstream branching.
type EventKind int

const (
	// FirstTrip means the vessel has no active trip on record.
	FirstTrip EventKind = iota
	// TripBoundary means the vessel's departing terminal changed, i.e. it
	// started a new leg.
	TripBoundary
	// Update means the location belongs to the current leg.
	Update
)

func (k EventKind) String() string {
	switch k {
	case FirstTrip:
		return "first_trip"
	case TripBoundary:
		return "trip_boundary"
	default:
		return "update"
	}
}

// Detect classifies loc against current. The comparison is terminal
// identity only: a departing-terminal change is the one unambiguous signal
// of a new leg, regardless of timestamp ordering.
func Detect(current *model.ActiveVesselTrip, loc model.VesselLocation) EventKind {
	if current == nil {
		return FirstTrip
	}
	if current.DepartingTerminalAbbrev != "" || loc.DepartingTerminalAbbrev != "" {
		if current.DepartingTerminalAbbrev != loc.DepartingTerminalAbbrev {
			return TripBoundary
		}
		return Update
	}
	if current.DepartingTerminalID != loc.DepartingTerminalID {
		return TripBoundary
	}
	return Update
}
