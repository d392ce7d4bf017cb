// Package metrics defines the sink contracts used to record operational
// events. Adapters live in infra/metrics.
package metrics

import (
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

// TickEvent summarizes one orchestrator tick.
type TickEvent struct {
	Processed int
	Failed    int
	Completed int
	Duration  time.Duration
	Time      time.Time
}

// TripCompletedEvent records one finalized trip.
type TripCompletedEvent struct {
	Trip model.CompletedVesselTrip
	Time time.Time
}

// TrainingRunEvent summarizes one pipeline run.
type TrainingRunEvent struct {
	RunID       string
	Trained     int
	NullModels  int
	Failed      int
	RecordsIn   int
	RecordsKept int
	Duration    time.Duration
	Time        time.Time
}

// Sink records operational events. Implementations must be safe for
// concurrent use.
type Sink interface {
	RecordTick(ev TickEvent) error
	RecordTripCompleted(ev TripCompletedEvent) error
	RecordTrainingRun(ev TrainingRunEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordTick(TickEvent) error                   { return nil }
func (NopSink) RecordTripCompleted(TripCompletedEvent) error { return nil }
func (NopSink) RecordTrainingRun(TrainingRunEvent) error     { return nil }
