package trip

import (
	"context"
	"testing"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/infra/logger"
	infrastore "github.com/pugetops/ferrytrack/infra/store"
)

func newTestUpdater() (*Updater, *infrastore.MemoryStore) {
	st := infrastore.NewMemoryStore()
	return NewUpdater(st, st, logger.NopLogger{}), st
}

func baseLoc(ts time.Time) model.VesselLocation {
	return model.VesselLocation{
		VesselID:                1,
		VesselName:              "Wenatchee",
		VesselAbbrev:            "WEN",
		DepartingTerminalID:     7,
		DepartingTerminalAbbrev: "P52",
		ArrivingTerminalID:      3,
		ArrivingTerminalAbbrev:  "BBI",
		InService:               true,
		AtDock:                  true,
		ScheduledDeparture:      ts.Add(10 * time.Minute),
		TimeStamp:               ts,
	}
}

func TestApplyFirstTripSetsSentinel(t *testing.T) {
	u, st := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	out, err := u.Apply(context.Background(), baseLoc(ts))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Kind != FirstTrip || !out.Wrote || out.Started == nil {
		t.Fatalf("unexpected outcome %+v", out)
	}

	cur, err := st.ActiveTrip(context.Background(), 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cur.HasSentinelStart() {
		t.Fatalf("first trip must carry the sentinel start, got %s", cur.TripStart)
	}
	if !cur.LastObserved.Equal(ts) {
		t.Fatalf("last observed: expected %s got %s", ts, cur.LastObserved)
	}
}

func TestApplyStampsLeftDockOnDeparture(t *testing.T) {
	u, st := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := u.Apply(ctx, baseLoc(ts)); err != nil {
		t.Fatalf("first: %v", err)
	}

	underway := baseLoc(ts.Add(12 * time.Minute))
	underway.ScheduledDeparture = ts.Add(10 * time.Minute)
	underway.AtDock = false
	out, err := u.Apply(ctx, underway)
	if err != nil {
		t.Fatalf("underway: %v", err)
	}
	if out.Kind != Update || !out.Wrote {
		t.Fatalf("unexpected outcome %+v", out)
	}

	cur, _ := st.ActiveTrip(ctx, 1)
	if !cur.LeftDockActual.Equal(underway.TimeStamp) {
		t.Fatalf("left dock: expected %s got %s", underway.TimeStamp, cur.LeftDockActual)
	}
	// Scheduled at +10m, left at +12m.
	if cur.LeftDockDelayMin != 2.0 {
		t.Fatalf("delay: expected 2.0 got %v", cur.LeftDockDelayMin)
	}
}

func TestApplyDiscardsStaleUpdate(t *testing.T) {
	u, st := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := u.Apply(ctx, baseLoc(ts)); err != nil {
		t.Fatalf("first: %v", err)
	}

	stale := baseLoc(ts.Add(-time.Minute))
	stale.AtDock = false
	out, err := u.Apply(ctx, stale)
	if err != nil {
		t.Fatalf("stale: %v", err)
	}
	if out.Wrote {
		t.Fatal("stale update must not write")
	}
	cur, _ := st.ActiveTrip(ctx, 1)
	if !cur.LeftDockActual.IsZero() {
		t.Fatal("stale update must not stamp departure")
	}
}

func TestApplyIdenticalUpdateIsNoop(t *testing.T) {
	u, _ := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := u.Apply(ctx, baseLoc(ts)); err != nil {
		t.Fatalf("first: %v", err)
	}
	same := baseLoc(ts.Add(time.Minute))
	same.ScheduledDeparture = ts.Add(10 * time.Minute)
	out, err := u.Apply(ctx, same)
	if err != nil {
		t.Fatalf("same: %v", err)
	}
	if out.Wrote {
		t.Fatal("unchanged leg fields must not write")
	}
}

func TestApplyBoundaryAfterSentinelSkipsCompletion(t *testing.T) {
	u, st := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := u.Apply(ctx, baseLoc(ts)); err != nil {
		t.Fatalf("first: %v", err)
	}

	moved := baseLoc(ts.Add(40 * time.Minute))
	moved.DepartingTerminalID = 3
	moved.DepartingTerminalAbbrev = "BBI"
	moved.ArrivingTerminalID = 7
	moved.ArrivingTerminalAbbrev = "P52"
	out, err := u.Apply(ctx, moved)
	if err != nil {
		t.Fatalf("boundary: %v", err)
	}
	if out.Kind != TripBoundary || out.Completed != nil {
		t.Fatalf("sentinel leg must not complete, got %+v", out)
	}
	if st.CompletedCount() != 0 {
		t.Fatalf("expected empty archive, got %d", st.CompletedCount())
	}

	cur, _ := st.ActiveTrip(ctx, 1)
	if cur.DepartingTerminalAbbrev != "BBI" {
		t.Fatalf("successor leg: expected BBI got %s", cur.DepartingTerminalAbbrev)
	}
	if !cur.TripStart.Equal(moved.TimeStamp) {
		t.Fatalf("successor start: expected %s got %s", moved.TimeStamp, cur.TripStart)
	}
}

func TestApplyFullLifecycle(t *testing.T) {
	u, st := newTestUpdater()
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// Leg 1: sentinel, never completable.
	if _, err := u.Apply(ctx, baseLoc(ts)); err != nil {
		t.Fatalf("first: %v", err)
	}

	// Boundary 1: real anchor starts here.
	leg2 := baseLoc(ts.Add(40 * time.Minute))
	leg2.DepartingTerminalID, leg2.DepartingTerminalAbbrev = 3, "BBI"
	leg2.ArrivingTerminalID, leg2.ArrivingTerminalAbbrev = 7, "P52"
	leg2.ScheduledDeparture = ts.Add(55 * time.Minute)
	if _, err := u.Apply(ctx, leg2); err != nil {
		t.Fatalf("leg2: %v", err)
	}

	// Departure observed on leg 2.
	underway := leg2
	underway.AtDock = false
	underway.TimeStamp = ts.Add(56 * time.Minute)
	if _, err := u.Apply(ctx, underway); err != nil {
		t.Fatalf("underway: %v", err)
	}

	// Boundary 2: leg 2 finalizes.
	leg3 := baseLoc(ts.Add(90 * time.Minute))
	if _, err := u.Apply(ctx, leg3); err != nil {
		t.Fatalf("leg3: %v", err)
	}

	trips, err := st.ListCompletedTrips(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 completed trip got %d", len(trips))
	}
	done := trips[0]
	if done.DepartingTerminalAbbrev != "BBI" || done.ArrivingTerminalAbbrev != "P52" {
		t.Fatalf("unexpected pair %s->%s", done.DepartingTerminalAbbrev, done.ArrivingTerminalAbbrev)
	}
	// Dock 40m->56m, sea 56m->90m.
	if done.AtDockDurationMin != 16.0 {
		t.Fatalf("at dock: expected 16.0 got %v", done.AtDockDurationMin)
	}
	if done.AtSeaDurationMin != 34.0 {
		t.Fatalf("at sea: expected 34.0 got %v", done.AtSeaDurationMin)
	}
	if done.LeftDockDelayMin != 1.0 {
		t.Fatalf("delay: expected 1.0 got %v", done.LeftDockDelayMin)
	}
}
