package model

import "time"

// TrainingDataRecord is a flattened, validated view of one completed trip
// joined with the previous leg of the same vessel. All durations and delays
// are minutes.
type TrainingDataRecord struct {
	VesselName string `json:"vessel_name"`

	DepartingTerminalAbbrev string `json:"departing_terminal_abbrev"`
	ArrivingTerminalAbbrev  string `json:"arriving_terminal_abbrev"`

	TripStart          time.Time `json:"trip_start"`
	ScheduledDeparture time.Time `json:"scheduled_departure"`
	LeftDock           time.Time `json:"left_dock"`
	TripEnd            time.Time `json:"trip_end"`

	// Previous-leg features. PrevArrivingAbbrev must equal
	// DepartingTerminalAbbrev or the record is rejected outright.
	PrevArrivingAbbrev string  `json:"prev_arriving_abbrev"`
	PrevDelayMin       float64 `json:"prev_delay_min"`
	PrevAtSeaMin       float64 `json:"prev_at_sea_min"`

	AtDockMin float64 `json:"at_dock_min"`
	AtSeaMin  float64 `json:"at_sea_min"`
	DelayMin  float64 `json:"delay_min"`

	// Time-derived features computed in the departure region's local
	// calendar.
	IsWeekend bool  `json:"is_weekend"`
	SchedEpoch int64 `json:"sched_epoch"`
}

// PairKey returns the route identity of the record.
func (r TrainingDataRecord) PairKey() TerminalPair {
	return TerminalPair{Departing: r.DepartingTerminalAbbrev, Arriving: r.ArrivingTerminalAbbrev}
}

// TerminalPair is an ordered (departing, arriving) route leg identity.
type TerminalPair struct {
	Departing string `json:"departing"`
	Arriving  string `json:"arriving"`
}

func (p TerminalPair) String() string { return p.Departing + "-" + p.Arriving }

// TerminalPairBucket groups the training records of one route pair together
// with run statistics. Buckets live only for the duration of one pipeline
// run; the trained models are what gets persisted.
type TerminalPairBucket struct {
	Pair     TerminalPair         `json:"pair"`
	Records  []TrainingDataRecord `json:"records"`
	Stats    BucketStats          `json:"stats"`
}

// BucketStats summarizes the bucket's input quality for the training report.
type BucketStats struct {
	TotalRecords    int     `json:"total_records"`
	RetainedRecords int     `json:"retained_records"`
	MeanDelayMin    float64 `json:"mean_delay_min"`
	MeanAtDockMin   float64 `json:"mean_at_dock_min"`
	MeanAtSeaMin    float64 `json:"mean_at_sea_min"`
}

// SchedulePressureMin is the dwell threshold above which a turnaround is
// considered tight for this route: 1.5 times the observed mean dwell.
func (s BucketStats) SchedulePressureMin() float64 {
	return 1.5 * s.MeanAtDockMin
}
