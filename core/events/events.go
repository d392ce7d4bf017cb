// Package events defines the trip lifecycle events emitted by the tracker
// and the contract for publishing them to downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

// Event is the closed set of lifecycle events carried on the in-process bus.
type Event interface {
	lifecycleEvent()
}

func (TripStarted) lifecycleEvent()      {}
func (TripCompleted) lifecycleEvent()    {}
func (TrainingFinished) lifecycleEvent() {}

// TripStarted is emitted when a new active trip row is created, either for a
// vessel's first observed leg or at a trip boundary.
type TripStarted struct {
	Trip model.ActiveVesselTrip
	// First is true when the trip carries the sentinel start, i.e. the
	// vessel had no tracked history.
	First bool
	Time  time.Time
}

// TripCompleted is emitted when an outgoing trip is finalized at a trip
// boundary.
type TripCompleted struct {
	Trip model.CompletedVesselTrip
	Time time.Time
}

// TrainingFinished is emitted after a full pipeline run.
type TrainingFinished struct {
	RunID   string
	Trained int
	Failed  int
	Time    time.Time
}

// Publisher forwards trip events to an external broker. Implementations
// live in infra/events.
type Publisher interface {
	PublishTripStarted(ctx context.Context, ev TripStarted) error
	PublishTripCompleted(ctx context.Context, ev TripCompleted) error
	Close() error
}
