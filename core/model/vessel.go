package model

import "time"

// VesselLocation is one position snapshot for a vessel as reported by the
// upstream feed. Arriving terminal fields may be empty while the vessel sits
// at dock without an assigned next leg.
type VesselLocation struct {
	VesselID     int    `json:"vessel_id"`
	VesselName   string `json:"vessel_name"`
	VesselAbbrev string `json:"vessel_abbrev"`

	DepartingTerminalID     int    `json:"departing_terminal_id"`
	DepartingTerminalName   string `json:"departing_terminal_name"`
	DepartingTerminalAbbrev string `json:"departing_terminal_abbrev"`
	ArrivingTerminalID      int    `json:"arriving_terminal_id"`
	ArrivingTerminalName    string `json:"arriving_terminal_name"`
	ArrivingTerminalAbbrev  string `json:"arriving_terminal_abbrev"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`

	InService bool `json:"in_service"`
	AtDock    bool `json:"at_dock"`

	// ScheduledDeparture, LeftDock and ETA are zero when the feed did not
	// report them.
	ScheduledDeparture time.Time `json:"scheduled_departure"`
	LeftDock           time.Time `json:"left_dock"`
	ETA                time.Time `json:"eta"`

	// TimeStamp is the feed observation time for this snapshot.
	TimeStamp time.Time `json:"timestamp"`
}

// VesselHistory is one completed voyage record from the feed's per-vessel
// history endpoint. Terminal names are free text and need mapping to
// abbreviations before use.
type VesselHistory struct {
	VesselName    string    `json:"vessel_name"`
	Departing     string    `json:"departing"`
	Arriving      string    `json:"arriving"`
	ScheduledDep  time.Time `json:"scheduled_departure"`
	ActualDepart  time.Time `json:"actual_departure"`
	EstArrival    time.Time `json:"est_arrival"`
	Date          time.Time `json:"date"`
}
