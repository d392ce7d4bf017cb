package trip

import (
	"math"
	"testing"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return ts
}

func TestCompleteDurations(t *testing.T) {
	start := mustParse(t, "2025-06-01T10:00:00Z")
	left := mustParse(t, "2025-06-01T10:12:30Z")
	end := mustParse(t, "2025-06-01T10:47:45Z")

	active := &model.ActiveVesselTrip{
		VesselID:                1,
		VesselAbbrev:            "WEN",
		DepartingTerminalAbbrev: "P52",
		ArrivingTerminalAbbrev:  "BBI",
		ScheduledDeparture:      mustParse(t, "2025-06-01T10:10:00Z"),
		TripStart:               start,
		LeftDockActual:          left,
		LastObserved:            end,
	}

	done := Complete(active, end)
	if done == nil {
		t.Fatal("expected completed trip")
	}
	if math.Abs(done.AtDockDurationMin-12.5) > 1e-9 {
		t.Fatalf("at dock: expected 12.5 got %v", done.AtDockDurationMin)
	}
	if math.Abs(done.AtSeaDurationMin-35.3) > 1e-9 {
		t.Fatalf("at sea: expected 35.3 got %v", done.AtSeaDurationMin)
	}
	if math.Abs(done.TotalDurationMin-47.8) > 1e-9 {
		t.Fatalf("total: expected 47.8 got %v", done.TotalDurationMin)
	}
	if math.Abs(done.LeftDockDelayMin-2.5) > 1e-9 {
		t.Fatalf("delay: expected 2.5 got %v", done.LeftDockDelayMin)
	}
	if done.TripKey != "WEN_2025-06-01_10:10" {
		t.Fatalf("unexpected trip key %q", done.TripKey)
	}
	if !done.TripEnd.Equal(end) {
		t.Fatalf("trip end: expected %s got %s", end, done.TripEnd)
	}
}

func TestCompleteSkipsSentinelStart(t *testing.T) {
	active := &model.ActiveVesselTrip{
		VesselAbbrev:   "WEN",
		TripStart:      model.SentinelTripStart,
		LeftDockActual: mustParse(t, "2025-06-01T10:12:00Z"),
	}
	if done := Complete(active, mustParse(t, "2025-06-01T10:45:00Z")); done != nil {
		t.Fatal("sentinel-start trip must not finalize")
	}
}

func TestCompleteSkipsMissingDeparture(t *testing.T) {
	active := &model.ActiveVesselTrip{
		VesselAbbrev: "WEN",
		TripStart:    mustParse(t, "2025-06-01T10:00:00Z"),
	}
	if done := Complete(active, mustParse(t, "2025-06-01T10:45:00Z")); done != nil {
		t.Fatal("trip without actual departure must not finalize")
	}
}

func TestCompleteNil(t *testing.T) {
	if done := Complete(nil, time.Now()); done != nil {
		t.Fatal("nil trip must not finalize")
	}
}
