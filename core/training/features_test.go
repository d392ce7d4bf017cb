package training

import (
	"math"
	"testing"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

func utcExtractor() *Extractor {
	return NewExtractor(time.UTC, 20)
}

func TestFeatureSchemaLengths(t *testing.T) {
	ex := utcExtractor()
	in := Input{
		ScheduledDeparture: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		TripStart:          time.Date(2025, 6, 2, 7, 50, 0, 0, time.UTC),
		LeftDock:           time.Date(2025, 6, 2, 8, 3, 0, 0, time.UTC),
		DelayMin:           3.0,
	}

	depart := ex.Extract(in, model.ModelDepart)
	if len(depart) != len(FeatureNames(model.ModelDepart)) {
		t.Fatalf("depart: %d features vs %d names", len(depart), len(FeatureNames(model.ModelDepart)))
	}
	arrive := ex.Extract(in, model.ModelArrive)
	if len(arrive) != len(FeatureNames(model.ModelArrive)) {
		t.Fatalf("arrive: %d features vs %d names", len(arrive), len(FeatureNames(model.ModelArrive)))
	}
	if arrive[len(arrive)-1] != 3.0 {
		t.Fatalf("arrive delay feature: expected 3.0 got %v", arrive[len(arrive)-1])
	}
}

func TestFeatureNamesReturnsCopy(t *testing.T) {
	names := FeatureNames(model.ModelDepart)
	names[0] = "mutated"
	if FeatureNames(model.ModelDepart)[0] == "mutated" {
		t.Fatal("FeatureNames must not expose internal state")
	}
}

func TestScheduleDeltaAnchorsOnDockArrival(t *testing.T) {
	ex := utcExtractor()
	in := Input{
		ScheduledDeparture: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		TripStart:          time.Date(2025, 6, 2, 7, 48, 0, 0, time.UTC),
		LeftDock:           time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC),
	}

	depart := ex.Extract(in, model.ModelDepart)
	if math.Abs(depart[0]-12.0) > 1e-9 {
		t.Fatalf("depart delta: expected 12 got %v", depart[0])
	}
	// Same anchor for the at-sea model; delay rides in its own feature.
	arrive := ex.Extract(in, model.ModelArrive)
	if math.Abs(arrive[0]-12.0) > 1e-9 {
		t.Fatalf("arrive delta: expected 12 got %v", arrive[0])
	}
}

func TestScheduleDeltaClampedFromAbove(t *testing.T) {
	ex := utcExtractor()
	in := Input{
		ScheduledDeparture: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		TripStart:          time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC),
	}
	got := ex.Extract(in, model.ModelDepart)[0]
	if got != 20 {
		t.Fatalf("expected clamp at 20 got %v", got)
	}
}

func TestTimeOfDayCircularSymmetry(t *testing.T) {
	ex := utcExtractor()
	// 23:00 and 01:00 sit symmetrically around the midnight center.
	before := ex.timeOfDay(time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC))
	after := ex.timeOfDay(time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC))
	if math.Abs(before[0]-after[0]) > 1e-12 {
		t.Fatalf("midnight weight asymmetric: %v vs %v", before[0], after[0])
	}
	if before[0] < 0.5 {
		t.Fatalf("23:00 should sit near the midnight center, weight %v", before[0])
	}
}

func TestTimeOfDayPeaksAtCenter(t *testing.T) {
	ex := utcExtractor()
	w := ex.timeOfDay(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	if w[2] != 1 {
		t.Fatalf("08:00 weight at the 08 center: expected 1 got %v", w[2])
	}
	for i, v := range w {
		if i != 2 && v >= w[2] {
			t.Fatalf("center %d should not dominate: %v", i, w)
		}
	}
}

func TestIsWeekendUsesLocalCalendar(t *testing.T) {
	ex, err := NewPacificExtractor()
	if err != nil {
		t.Fatalf("pacific extractor: %v", err)
	}
	// Monday 04:00 UTC is still Sunday evening in Seattle.
	sundayPacific := time.Date(2025, 6, 9, 4, 0, 0, 0, time.UTC)
	if !ex.isWeekend(sundayPacific) {
		t.Fatal("expected weekend for Sunday evening Pacific")
	}
	// Saturday 03:00 UTC is Friday evening in Seattle.
	fridayPacific := time.Date(2025, 6, 7, 3, 0, 0, 0, time.UTC)
	if ex.isWeekend(fridayPacific) {
		t.Fatal("expected weekday for Friday evening Pacific")
	}
}

func TestExtractZeroTimesAreNeutral(t *testing.T) {
	ex := utcExtractor()
	got := ex.Extract(Input{}, model.ModelDepart)
	for i, v := range got {
		if v != 0 {
			t.Fatalf("feature %d: expected 0 for zero input got %v", i, v)
		}
	}
}
