// Package training implements the prediction pipeline: historical loading,
// record conversion and quality filtering, terminal-pair bucketing, feature
// extraction and per-pair regression training.
package training

import (
	"fmt"
	"math"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

// rbfCenters are the hour-of-day centers for the cyclical time encoding.
const rbfSigmaHours = 2.0

var rbfCenters = []float64{0, 4, 8, 12, 16, 20}

// departFeatureNames is the closed, ordered schema for the at-dock model.
// delay_minutes is deliberately absent: it is derived from the departure
// time the model is trying to predict.
var departFeatureNames = []string{
	"schedule_delta",
	"tod_rbf_00", "tod_rbf_04", "tod_rbf_08", "tod_rbf_12", "tod_rbf_16", "tod_rbf_20",
	"is_weekend",
}

// arriveFeatureNames extends the schema with the delay observed at left-dock,
// which is known once the vessel is underway.
var arriveFeatureNames = []string{
	"schedule_delta",
	"tod_rbf_00", "tod_rbf_04", "tod_rbf_08", "tod_rbf_12", "tod_rbf_16", "tod_rbf_20",
	"is_weekend",
	"delay_minutes",
}

// FeatureNames returns the ordered feature schema for a model type. The
// stored model's copy of this list is the source of truth at prediction time.
func FeatureNames(typ model.ModelType) []string {
	if typ == model.ModelArrive {
		return append([]string(nil), arriveFeatureNames...)
	}
	return append([]string(nil), departFeatureNames...)
}

// Input is the minimal view of a trip needed to extract features. It is
// shared by training (from TrainingDataRecord) and prediction (from a live
// ActiveVesselTrip) so both sides walk the exact same code path.
type Input struct {
	ScheduledDeparture time.Time
	TripStart          time.Time
	LeftDock           time.Time
	DelayMin           float64
}

// InputFromRecord adapts a validated training record.
func InputFromRecord(r model.TrainingDataRecord) Input {
	return Input{
		ScheduledDeparture: r.ScheduledDeparture,
		TripStart:          r.TripStart,
		LeftDock:           r.LeftDock,
		DelayMin:           r.DelayMin,
	}
}

// InputFromTrip adapts a live active trip.
func InputFromTrip(t *model.ActiveVesselTrip) Input {
	return Input{
		ScheduledDeparture: t.ScheduledDeparture,
		TripStart:          t.TripStart,
		LeftDock:           t.LeftDockActual,
		DelayMin:           t.LeftDockDelayMin,
	}
}

// Extractor turns trip data into the numeric feature vectors fed to the
// regression. It is immutable and safe for concurrent use.
type Extractor struct {
	loc           *time.Location
	deltaClampMin float64
}

// NewExtractor builds an extractor using loc as the departure region's
// calendar for weekday math. clampMin bounds schedule_delta from above to
// limit leverage from rare extreme values.
func NewExtractor(loc *time.Location, clampMin float64) *Extractor {
	if clampMin <= 0 {
		clampMin = 20
	}
	return &Extractor{loc: loc, deltaClampMin: clampMin}
}

// NewPacificExtractor builds the production extractor on the
// America/Los_Angeles calendar.
func NewPacificExtractor() (*Extractor, error) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return nil, fmt.Errorf("load pacific tz: %w", err)
	}
	return NewExtractor(loc, 20), nil
}

// Extract computes the feature vector for the given model type, in the
// exact order of FeatureNames(typ).
func (e *Extractor) Extract(in Input, typ model.ModelType) []float64 {
	// Both models anchor schedule pressure on arrival at the dock. Anchoring
	// the at-sea model on the actual departure instead would make the delta
	// the exact negative of delay_minutes and collapse the design matrix.
	out := make([]float64, 0, len(arriveFeatureNames))
	out = append(out, e.scheduleDelta(in.ScheduledDeparture, in.TripStart))
	out = append(out, e.timeOfDay(in.ScheduledDeparture)...)
	out = append(out, boolFeature(e.isWeekend(in.ScheduledDeparture)))
	if typ == model.ModelArrive {
		out = append(out, in.DelayMin)
	}
	return out
}

// scheduleDelta is minutes from anchor to the scheduled departure, clamped
// from above.
func (e *Extractor) scheduleDelta(sched, anchor time.Time) float64 {
	if sched.IsZero() || anchor.IsZero() {
		return 0
	}
	d := sched.Sub(anchor).Minutes()
	if d > e.deltaClampMin {
		d = e.deltaClampMin
	}
	return d
}

// timeOfDay returns Gaussian radial-basis weights over the hour-of-day
// centers using circular distance, so 23:30 and 00:30 land symmetrically
// around midnight.
func (e *Extractor) timeOfDay(ts time.Time) []float64 {
	w := make([]float64, len(rbfCenters))
	if ts.IsZero() {
		return w
	}
	lt := ts.In(e.loc)
	h := float64(lt.Hour()) + float64(lt.Minute())/60.0
	for i, c := range rbfCenters {
		d := math.Abs(h - c)
		if d > 12 {
			d = 24 - d
		}
		w[i] = math.Exp(-(d * d) / (2 * rbfSigmaHours * rbfSigmaHours))
	}
	return w
}

// isWeekend uses the local calendar day, not UTC: weekend ferry demand
// differs materially and Pacific midnight is not UTC midnight.
func (e *Extractor) isWeekend(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	wd := ts.In(e.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Target returns the regression label for a record under the given model
// type.
func Target(r model.TrainingDataRecord, typ model.ModelType) float64 {
	if typ == model.ModelArrive {
		return r.AtSeaMin
	}
	return r.AtDockMin
}
