package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/pugetops/ferrytrack/core/events"
	"github.com/pugetops/ferrytrack/core/feed"
	"github.com/pugetops/ferrytrack/core/logger"
	coremetrics "github.com/pugetops/ferrytrack/core/metrics"
	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/internal/eventbus"
)

// TickResult summarizes one orchestrator tick.
type TickResult struct {
	Processed int
	Failed    int
	Completed int
	Errors    []error
}

// Tracker runs one orchestrator tick: fetch the fleet, snapshot each vessel
// and drive its trip state machine. Per-vessel failures are isolated; one
// bad vessel never aborts the rest of the poll cycle.
type Tracker struct {
	source    feed.Source
	updater   *Updater
	snapshots store.SnapshotStore
	bus       eventbus.EventBus
	sink      coremetrics.Sink
	log       logger.Logger
}

// NewTracker builds a Tracker. bus and sink may be nil.
func NewTracker(source feed.Source, updater *Updater, snapshots store.SnapshotStore, bus eventbus.EventBus, sink coremetrics.Sink, log logger.Logger) *Tracker {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Tracker{source: source, updater: updater, snapshots: snapshots, bus: bus, sink: sink, log: log}
}

// Tick fetches current fleet positions and processes every vessel
// sequentially. Only a failed fleet fetch is returned as an error; per-vessel
// failures are collected in the result.
func (t *Tracker) Tick(ctx context.Context) (TickResult, error) {
	start := time.Now()
	var res TickResult

	locs, err := t.source.Locations(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch vessel locations: %w", err)
	}

	for _, loc := range locs {
		if err := t.processVessel(ctx, loc, &res); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err)
			t.log.Errorf("vessel %d (%s): %v", loc.VesselID, loc.VesselAbbrev, err)
			continue
		}
		res.Processed++
	}

	if err := t.sink.RecordTick(coremetrics.TickEvent{
		Processed: res.Processed,
		Failed:    res.Failed,
		Completed: res.Completed,
		Duration:  time.Since(start),
		Time:      start,
	}); err != nil {
		t.log.Errorf("tick metrics: %v", err)
	}
	t.log.Infof("tick done: %d processed, %d failed, %d completed in %s",
		res.Processed, res.Failed, res.Completed, time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (t *Tracker) processVessel(ctx context.Context, loc model.VesselLocation, res *TickResult) error {
	if t.snapshots != nil {
		if err := t.snapshots.PutSnapshot(ctx, loc); err != nil {
			// Snapshot loss is not worth failing the vessel over.
			t.log.Warnf("vessel %d: snapshot write: %v", loc.VesselID, err)
		}
	}

	out, err := t.updater.Apply(ctx, loc)
	if err != nil {
		return err
	}

	if out.Completed != nil {
		res.Completed++
		if err := t.sink.RecordTripCompleted(coremetrics.TripCompletedEvent{Trip: *out.Completed, Time: loc.TimeStamp}); err != nil {
			t.log.Errorf("completion metrics: %v", err)
		}
		if t.bus != nil {
			t.bus.Publish(events.TripCompleted{Trip: *out.Completed, Time: loc.TimeStamp})
		}
	}
	if out.Started != nil && t.bus != nil {
		t.bus.Publish(events.TripStarted{Trip: *out.Started, First: out.Kind == FirstTrip, Time: loc.TimeStamp})
	}
	return nil
}
