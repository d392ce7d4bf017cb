package model

import (
	"math"
	"time"
)

// SentinelTripStart marks an active trip whose real start time is unknown,
// i.e. the first leg observed for a vessel after tracking begins. A trip
// carrying this start must never be finalized into a CompletedVesselTrip.
var SentinelTripStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// ActiveVesselTrip is the single live trip row for a vessel, covering the
// at-dock dwell and the sea transit of one leg. At most one exists per
// vessel id at any time.
type ActiveVesselTrip struct {
	VesselID     int    `json:"vessel_id"`
	VesselName   string `json:"vessel_name"`
	VesselAbbrev string `json:"vessel_abbrev"`

	DepartingTerminalID     int    `json:"departing_terminal_id"`
	DepartingTerminalName   string `json:"departing_terminal_name"`
	DepartingTerminalAbbrev string `json:"departing_terminal_abbrev"`
	ArrivingTerminalID      int    `json:"arriving_terminal_id"`
	ArrivingTerminalName    string `json:"arriving_terminal_name"`
	ArrivingTerminalAbbrev  string `json:"arriving_terminal_abbrev"`

	ScheduledDeparture time.Time `json:"scheduled_departure"`
	LeftDock           time.Time `json:"left_dock"`
	// LeftDockActual is stamped the instant the vessel is observed leaving
	// the dock, and anchors the at-dock/at-sea duration split.
	LeftDockActual   time.Time `json:"left_dock_actual"`
	LeftDockDelayMin float64   `json:"left_dock_delay_min"`
	ETA              time.Time `json:"eta"`

	InService bool `json:"in_service"`
	AtDock    bool `json:"at_dock"`

	// TripStart anchors all duration math for this leg. Equal to
	// SentinelTripStart when no real anchor exists.
	TripStart    time.Time `json:"trip_start"`
	LastObserved time.Time `json:"last_observed"`
}

// HasSentinelStart reports whether this trip has no real start anchor.
func (t *ActiveVesselTrip) HasSentinelStart() bool {
	return t.TripStart.Equal(SentinelTripStart)
}

// CompletedVesselTrip is the immutable record written exactly once when a
// trip boundary is detected. Durations are minutes rounded to one decimal.
type CompletedVesselTrip struct {
	ActiveVesselTrip

	// TripKey correlates the trip externally; it is not a storage key.
	TripKey string    `json:"trip_key"`
	TripEnd time.Time `json:"trip_end"`

	AtDockDurationMin float64 `json:"at_dock_duration_min"`
	AtSeaDurationMin  float64 `json:"at_sea_duration_min"`
	TotalDurationMin  float64 `json:"total_duration_min"`
}

// MakeTripKey derives the external correlation key
// {vesselAbbrev}_{YYYY-MM-DD_HH:mm} from the scheduled departure, falling
// back to the observation timestamp when no schedule is known.
func MakeTripKey(vesselAbbrev string, scheduledDeparture, observed time.Time) string {
	ts := scheduledDeparture
	if ts.IsZero() {
		ts = observed
	}
	return vesselAbbrev + "_" + ts.UTC().Format("2006-01-02_15:04")
}

// DurationMin returns b-a in minutes rounded to one decimal place.
func DurationMin(a, b time.Time) float64 {
	return round1(b.Sub(a).Minutes())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
