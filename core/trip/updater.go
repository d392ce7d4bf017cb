package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/store"
)

// Outcome reports what the state machine did with one location.
type Outcome struct {
	Kind EventKind
	// Wrote is false when the location was discarded as stale or identical.
	Wrote bool
	// Completed is non-nil when a trip boundary finalized the outgoing leg.
	Completed *model.CompletedVesselTrip
	// Started is non-nil when a new active trip row was created.
	Started *model.ActiveVesselTrip
}

// Updater drives the per-vessel trip state machine against storage.
type Updater struct {
	active    store.ActiveTripStore
	completed store.CompletedTripStore
	log       logger.Logger
}

// NewUpdater wires the state machine to its stores.
func NewUpdater(active store.ActiveTripStore, completed store.CompletedTripStore, log logger.Logger) *Updater {
	return &Updater{active: active, completed: completed, log: log}
}

// Apply feeds one location through the state machine:
//
//	no trip        -> insert with sentinel start
//	terminal moved -> finalize outgoing leg, insert successor
//	same leg       -> patch mutable fields if anything changed
func (u *Updater) Apply(ctx context.Context, loc model.VesselLocation) (Outcome, error) {
	current, err := u.active.ActiveTrip(ctx, loc.VesselID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load active trip for vessel %d: %w", loc.VesselID, err)
	}

	kind := Detect(current, loc)
	switch kind {
	case FirstTrip:
		return u.firstTrip(ctx, loc)
	case TripBoundary:
		return u.boundary(ctx, current, loc)
	default:
		return u.update(ctx, current, loc)
	}
}

func (u *Updater) firstTrip(ctx context.Context, loc model.VesselLocation) (Outcome, error) {
	t := newActiveTrip(loc, model.SentinelTripStart)
	if err := u.active.ReplaceActiveTrip(ctx, t); err != nil {
		return Outcome{Kind: FirstTrip}, fmt.Errorf("insert first trip for vessel %d: %w", loc.VesselID, err)
	}
	u.log.Infof("vessel %s: first observed leg at %s, sentinel start", loc.VesselAbbrev, loc.DepartingTerminalAbbrev)
	return Outcome{Kind: FirstTrip, Wrote: true, Started: t}, nil
}

func (u *Updater) boundary(ctx context.Context, current *model.ActiveVesselTrip, loc model.VesselLocation) (Outcome, error) {
	out := Outcome{Kind: TripBoundary}

	if done := Complete(current, loc.TimeStamp); done != nil {
		if err := u.completed.InsertCompletedTrip(ctx, done); err != nil {
			return out, fmt.Errorf("insert completed trip %s: %w", done.TripKey, err)
		}
		out.Completed = done
		u.log.Infof("vessel %s: completed %s->%s, dock %.1fm sea %.1fm",
			done.VesselAbbrev, done.DepartingTerminalAbbrev, done.ArrivingTerminalAbbrev,
			done.AtDockDurationMin, done.AtSeaDurationMin)
	} else {
		u.log.Debugf("vessel %s: boundary without completable trip, skipping finalize", loc.VesselAbbrev)
	}

	next := newActiveTrip(loc, loc.TimeStamp)
	if err := u.active.ReplaceActiveTrip(ctx, next); err != nil {
		return out, fmt.Errorf("insert successor trip for vessel %d: %w", loc.VesselID, err)
	}
	out.Wrote = true
	out.Started = next
	return out, nil
}

func (u *Updater) update(ctx context.Context, current *model.ActiveVesselTrip, loc model.VesselLocation) (Outcome, error) {
	out := Outcome{Kind: Update}

	// Stale or out-of-order delivery guard.
	if !loc.TimeStamp.After(current.LastObserved) {
		return out, nil
	}
	if loc.VesselID != current.VesselID || (loc.VesselAbbrev != "" && current.VesselAbbrev != "" && loc.VesselAbbrev != current.VesselAbbrev) {
		u.log.Warnf("vessel %d: identity mismatch on update, discarding", loc.VesselID)
		return out, nil
	}

	next := *current
	changed := patchTrip(&next, loc)

	// The at-dock -> underway transition is the authoritative departure
	// event for duration math.
	if current.AtDock && !loc.AtDock && next.LeftDockActual.IsZero() {
		next.LeftDockActual = loc.TimeStamp
		if !next.ScheduledDeparture.IsZero() {
			next.LeftDockDelayMin = model.DurationMin(next.ScheduledDeparture, next.LeftDockActual)
		}
		changed = true
		u.log.Infof("vessel %s: left dock %s at %s", loc.VesselAbbrev, next.DepartingTerminalAbbrev, loc.TimeStamp.Format("15:04:05"))
	}

	if !changed {
		return out, nil
	}
	next.LastObserved = loc.TimeStamp
	if err := u.active.ReplaceActiveTrip(ctx, &next); err != nil {
		return out, fmt.Errorf("update trip for vessel %d: %w", loc.VesselID, err)
	}
	out.Wrote = true
	return out, nil
}

// patchTrip copies the mutable leg fields from loc, reporting whether any
// differed.
func patchTrip(t *model.ActiveVesselTrip, loc model.VesselLocation) bool {
	changed := false
	setStr := func(dst *string, v string) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	setInt := func(dst *int, v int) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	setBool := func(dst *bool, v bool) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}

	setStr(&t.VesselName, loc.VesselName)
	setStr(&t.VesselAbbrev, loc.VesselAbbrev)
	setInt(&t.ArrivingTerminalID, loc.ArrivingTerminalID)
	setStr(&t.ArrivingTerminalName, loc.ArrivingTerminalName)
	setStr(&t.ArrivingTerminalAbbrev, loc.ArrivingTerminalAbbrev)
	setBool(&t.InService, loc.InService)
	setBool(&t.AtDock, loc.AtDock)

	if !loc.ScheduledDeparture.IsZero() && !t.ScheduledDeparture.Equal(loc.ScheduledDeparture) {
		t.ScheduledDeparture = loc.ScheduledDeparture
		changed = true
	}
	if !loc.LeftDock.IsZero() && !t.LeftDock.Equal(loc.LeftDock) {
		t.LeftDock = loc.LeftDock
		changed = true
	}
	if !loc.ETA.IsZero() && !t.ETA.Equal(loc.ETA) {
		t.ETA = loc.ETA
		changed = true
	}
	return changed
}

func newActiveTrip(loc model.VesselLocation, tripStart time.Time) *model.ActiveVesselTrip {
	t := &model.ActiveVesselTrip{
		VesselID:                loc.VesselID,
		VesselName:              loc.VesselName,
		VesselAbbrev:            loc.VesselAbbrev,
		DepartingTerminalID:     loc.DepartingTerminalID,
		DepartingTerminalName:   loc.DepartingTerminalName,
		DepartingTerminalAbbrev: loc.DepartingTerminalAbbrev,
		ArrivingTerminalID:      loc.ArrivingTerminalID,
		ArrivingTerminalName:    loc.ArrivingTerminalName,
		ArrivingTerminalAbbrev:  loc.ArrivingTerminalAbbrev,
		ScheduledDeparture:      loc.ScheduledDeparture,
		LeftDock:                loc.LeftDock,
		ETA:                     loc.ETA,
		InService:               loc.InService,
		AtDock:                  loc.AtDock,
		TripStart:               tripStart,
		LastObserved:            loc.TimeStamp,
	}
	return t
}
