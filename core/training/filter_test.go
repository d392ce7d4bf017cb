package training

import (
	"testing"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/terminals"
	"github.com/pugetops/ferrytrack/infra/logger"
)

func newTestConverter() *Converter {
	return NewConverter(terminals.NewTable(), utcExtractor(), FilterConfig{}, logger.NopLogger{})
}

// makeLeg builds a plausible completed leg starting at start with a 12 minute
// dwell and a 35 minute crossing.
func makeLeg(vesselID int, dep, arr string, start time.Time) model.CompletedVesselTrip {
	left := start.Add(12 * time.Minute)
	end := left.Add(35 * time.Minute)
	t := model.CompletedVesselTrip{
		ActiveVesselTrip: model.ActiveVesselTrip{
			VesselID:                vesselID,
			VesselName:              "Wenatchee",
			VesselAbbrev:            "WEN",
			DepartingTerminalAbbrev: dep,
			ArrivingTerminalAbbrev:  arr,
			ScheduledDeparture:      start.Add(10 * time.Minute),
			LeftDockActual:          left,
			TripStart:               start,
			LastObserved:            end,
		},
		TripEnd: end,
	}
	t.AtDockDurationMin = model.DurationMin(t.TripStart, t.LeftDockActual)
	t.AtSeaDurationMin = model.DurationMin(t.LeftDockActual, t.TripEnd)
	t.TotalDurationMin = model.DurationMin(t.TripStart, t.TripEnd)
	t.LeftDockDelayMin = model.DurationMin(t.ScheduledDeparture, t.LeftDockActual)
	return t
}

func TestFromCompletedChainsConsecutiveLegs(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "BBI", start)
	legB := makeLeg(1, "BBI", "P52", legA.TripEnd)
	legC := makeLeg(1, "P52", "BBI", legB.TripEnd)

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{legC, legA, legB})
	if sum.Total != 3 {
		t.Fatalf("total: expected 3 got %d", sum.Total)
	}
	if len(recs) != 2 {
		t.Fatalf("retained: expected 2 got %d", len(recs))
	}
	if sum.Dropped["no_previous_leg"] != 1 {
		t.Fatalf("expected 1 no_previous_leg drop, got %v", sum.Dropped)
	}
	// Records are chronological per vessel, so legB comes first.
	if recs[0].DepartingTerminalAbbrev != "BBI" || recs[0].PrevArrivingAbbrev != "BBI" {
		t.Fatalf("unexpected first record %+v", recs[0])
	}
	if recs[0].PrevAtSeaMin != legA.AtSeaDurationMin {
		t.Fatalf("prev at-sea: expected %v got %v", legA.AtSeaDurationMin, recs[0].PrevAtSeaMin)
	}
}

func TestFromCompletedSeparatesVesselsWithoutIDs(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	// Feed-rebuilt legs carry no vessel id. Two boats working the same
	// route in opposite directions interleave in time, and one boat's
	// arrival must never satisfy the other's departure-terminal check.
	a1 := makeLeg(0, "P52", "BBI", start)
	a2 := makeLeg(0, "BBI", "P52", a1.TripEnd)
	b1 := makeLeg(0, "BBI", "P52", start.Add(5*time.Minute))
	b2 := makeLeg(0, "P52", "BBI", b1.TripEnd)
	for _, leg := range []*model.CompletedVesselTrip{&b1, &b2} {
		leg.VesselName = "Tacoma"
		leg.VesselAbbrev = "TAC"
	}

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{a1, b1, a2, b2})
	if len(recs) != 2 {
		t.Fatalf("expected 2 records got %d", len(recs))
	}
	if sum.Dropped["no_previous_leg"] != 2 {
		t.Fatalf("expected one head drop per vessel, got %v", sum.Dropped)
	}
	byName := map[string]model.TrainingDataRecord{}
	for _, r := range recs {
		byName[r.VesselName] = r
	}
	if r, ok := byName["Wenatchee"]; !ok || r.DepartingTerminalAbbrev != "BBI" {
		t.Fatalf("Wenatchee must chain onto its own first leg, got %+v", byName)
	}
	if r, ok := byName["Tacoma"]; !ok || r.DepartingTerminalAbbrev != "P52" {
		t.Fatalf("Tacoma must chain onto its own first leg, got %+v", byName)
	}
	if byName["Wenatchee"].PrevAtSeaMin != a1.AtSeaDurationMin {
		t.Fatalf("prev at-sea crossed vessels: %v", byName["Wenatchee"])
	}
}

func TestFromCompletedRejectsBrokenSequence(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "BBI", start)
	// Vessel teleported: previous arrival BBI but next departure EDM.
	legB := makeLeg(1, "EDM", "KIN", legA.TripEnd)

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{legA, legB})
	if len(recs) != 0 {
		t.Fatalf("expected no records got %d", len(recs))
	}
	if sum.Dropped["broken_leg_sequence"] != 1 {
		t.Fatalf("expected broken_leg_sequence drop, got %v", sum.Dropped)
	}
}

func TestFromCompletedRejectsSentinelStart(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "BBI", start)
	legB := makeLeg(1, "BBI", "P52", legA.TripEnd)
	legB.TripStart = model.SentinelTripStart

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{legA, legB})
	if len(recs) != 0 {
		t.Fatalf("expected no records got %d", len(recs))
	}
	if sum.Dropped["incomplete"] != 1 {
		t.Fatalf("expected incomplete drop, got %v", sum.Dropped)
	}
}

func TestFromCompletedRejectsUnknownTerminal(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "XXX", start)
	legB := makeLeg(1, "XXX", "P52", legA.TripEnd)

	_, sum := c.FromCompleted([]model.CompletedVesselTrip{legA, legB})
	if sum.Dropped["invalid_terminal"] != 2 {
		t.Fatalf("expected 2 invalid_terminal drops, got %v", sum.Dropped)
	}
}

func TestFromCompletedRejectsOutlierDwell(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "BBI", start)
	legB := makeLeg(1, "BBI", "P52", legA.TripEnd)
	// Overnight layover disguised as a dwell.
	legB.LeftDockActual = legB.TripStart.Add(8 * time.Hour)
	legB.TripEnd = legB.LeftDockActual.Add(35 * time.Minute)
	legB.AtDockDurationMin = model.DurationMin(legB.TripStart, legB.LeftDockActual)
	legB.AtSeaDurationMin = model.DurationMin(legB.LeftDockActual, legB.TripEnd)

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{legA, legB})
	if len(recs) != 0 {
		t.Fatalf("expected no records got %d", len(recs))
	}
	if sum.Dropped["outlier"] != 1 {
		t.Fatalf("expected outlier drop, got %v", sum.Dropped)
	}
}

func TestFromCompletedRejectsMisattributedSchedule(t *testing.T) {
	c := newTestConverter()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	legA := makeLeg(1, "P52", "BBI", start)
	legB := makeLeg(1, "BBI", "P52", legA.TripEnd)
	// Schedule belongs to a sailing an hour later.
	legB.ScheduledDeparture = legB.TripStart.Add(time.Hour)

	recs, sum := c.FromCompleted([]model.CompletedVesselTrip{legA, legB})
	if len(recs) != 0 {
		t.Fatalf("expected no records got %d", len(recs))
	}
	if sum.Dropped["schedule_mismatch"] != 1 {
		t.Fatalf("expected schedule_mismatch drop, got %v", sum.Dropped)
	}
}
