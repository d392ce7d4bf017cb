package training

import (
	"sort"

	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/terminals"
)

// FilterConfig bounds encode domain knowledge: ferries do not legitimately
// dwell overnight or sail for hours on these routes, so records outside the
// bounds are data-capture glitches, not trips.
type FilterConfig struct {
	MaxAbsDelayMin   float64 `json:"max_abs_delay_min"`
	MinAtDockMin     float64 `json:"min_at_dock_min"`
	MaxAtDockMin     float64 `json:"max_at_dock_min"`
	MinAtSeaMin      float64 `json:"min_at_sea_min"`
	MaxAtSeaMin      float64 `json:"max_at_sea_min"`
	SchedAheadMaxMin float64 `json:"sched_ahead_max_min"`
}

// SetDefaults applies the production bounds.
func (c *FilterConfig) SetDefaults() {
	if c.MaxAbsDelayMin == 0 {
		c.MaxAbsDelayMin = 90
	}
	if c.MinAtDockMin == 0 {
		c.MinAtDockMin = 2
	}
	if c.MaxAtDockMin == 0 {
		c.MaxAtDockMin = 45
	}
	if c.MinAtSeaMin == 0 {
		c.MinAtSeaMin = 2
	}
	if c.MaxAtSeaMin == 0 {
		c.MaxAtSeaMin = 90
	}
	if c.SchedAheadMaxMin == 0 {
		c.SchedAheadMaxMin = 25
	}
}

// Rejection reasons tracked in the quality summary.
const (
	reasonIncomplete     = "incomplete"
	reasonInvalidTerm    = "invalid_terminal"
	reasonNonChrono      = "non_chronological"
	reasonSchedMismatch  = "schedule_mismatch"
	reasonOutlier        = "outlier"
	reasonNoPrevLeg      = "no_previous_leg"
	reasonBrokenSequence = "broken_leg_sequence"
)

// QualitySummary reports how the input set was filtered down. Rejections
// are data quality, never errors.
type QualitySummary struct {
	Total    int            `json:"total"`
	Retained int            `json:"retained"`
	Dropped  map[string]int `json:"dropped"`
}

func newQualitySummary() QualitySummary {
	return QualitySummary{Dropped: map[string]int{}}
}

func (q *QualitySummary) drop(reason string) {
	q.Dropped[reason]++
}

// Converter normalizes completed trips (or raw feed history) into validated
// TrainingDataRecords with previous-leg features attached.
type Converter struct {
	terms *terminals.Table
	ex    *Extractor
	cfg   FilterConfig
	log   logger.Logger
}

// NewConverter builds a converter around the immutable terminal table.
func NewConverter(terms *terminals.Table, ex *Extractor, cfg FilterConfig, log logger.Logger) *Converter {
	cfg.SetDefaults()
	return &Converter{terms: terms, ex: ex, cfg: cfg, log: log}
}

// FromCompleted turns stored completed trips into training records. Trips
// are grouped per vessel and sorted chronologically so each record can carry
// its true predecessor; records whose predecessor does not chain (previous
// arrival != current departure) are rejected outright, because their
// previous-leg features would reference an unrelated trip.
func (c *Converter) FromCompleted(trips []model.CompletedVesselTrip) ([]model.TrainingDataRecord, QualitySummary) {
	sum := newQualitySummary()
	sum.Total = len(trips)

	// Feed-rebuilt trips carry no vessel id, so the id alone would merge
	// every rebuilt vessel into one zero-keyed chain; the name keeps their
	// legs apart.
	type chainKey struct {
		id   int
		name string
	}
	byVessel := map[chainKey][]model.CompletedVesselTrip{}
	for _, t := range trips {
		k := chainKey{id: t.VesselID, name: t.VesselName}
		byVessel[k] = append(byVessel[k], t)
	}

	var out []model.TrainingDataRecord
	for _, legs := range byVessel {
		sort.Slice(legs, func(i, j int) bool { return legs[i].TripStart.Before(legs[j].TripStart) })
		for i := range legs {
			cur := legs[i]
			if !c.passesBase(cur, &sum) {
				continue
			}
			if i == 0 {
				sum.drop(reasonNoPrevLeg)
				continue
			}
			prev := legs[i-1]
			if prev.ArrivingTerminalAbbrev != cur.DepartingTerminalAbbrev {
				sum.drop(reasonBrokenSequence)
				continue
			}
			out = append(out, c.record(cur, prev))
		}
	}
	sum.Retained = len(out)
	c.log.Infof("converted %d/%d completed trips into training records", sum.Retained, sum.Total)
	return out, sum
}

// passesBase applies the completeness, validity, sanity and outlier checks.
func (c *Converter) passesBase(t model.CompletedVesselTrip, sum *QualitySummary) bool {
	if t.DepartingTerminalAbbrev == "" || t.ArrivingTerminalAbbrev == "" ||
		t.ScheduledDeparture.IsZero() || t.LeftDockActual.IsZero() ||
		t.TripStart.IsZero() || t.TripEnd.IsZero() || t.HasSentinelStart() {
		sum.drop(reasonIncomplete)
		return false
	}
	if !c.terms.IsValid(t.DepartingTerminalAbbrev) || !c.terms.IsValid(t.ArrivingTerminalAbbrev) {
		sum.drop(reasonInvalidTerm)
		return false
	}
	if !t.TripStart.Before(t.LeftDockActual) || !t.LeftDockActual.Before(t.TripEnd) {
		sum.drop(reasonNonChrono)
		return false
	}
	// Guard against misattributed schedule data: a schedule far ahead of
	// the dock arrival belongs to a later sailing.
	if t.ScheduledDeparture.Sub(t.TripStart).Minutes() > c.cfg.SchedAheadMaxMin {
		sum.drop(reasonSchedMismatch)
		return false
	}
	delay := model.DurationMin(t.ScheduledDeparture, t.LeftDockActual)
	if delay > c.cfg.MaxAbsDelayMin || delay < -c.cfg.MaxAbsDelayMin {
		sum.drop(reasonOutlier)
		return false
	}
	if t.AtDockDurationMin < c.cfg.MinAtDockMin || t.AtDockDurationMin > c.cfg.MaxAtDockMin {
		sum.drop(reasonOutlier)
		return false
	}
	if t.AtSeaDurationMin < c.cfg.MinAtSeaMin || t.AtSeaDurationMin > c.cfg.MaxAtSeaMin {
		sum.drop(reasonOutlier)
		return false
	}
	return true
}

func (c *Converter) record(cur, prev model.CompletedVesselTrip) model.TrainingDataRecord {
	r := model.TrainingDataRecord{
		VesselName:              cur.VesselName,
		DepartingTerminalAbbrev: cur.DepartingTerminalAbbrev,
		ArrivingTerminalAbbrev:  cur.ArrivingTerminalAbbrev,
		TripStart:               cur.TripStart,
		ScheduledDeparture:      cur.ScheduledDeparture,
		LeftDock:                cur.LeftDockActual,
		TripEnd:                 cur.TripEnd,
		PrevArrivingAbbrev:      prev.ArrivingTerminalAbbrev,
		PrevDelayMin:            prev.LeftDockDelayMin,
		PrevAtSeaMin:            prev.AtSeaDurationMin,
		AtDockMin:               cur.AtDockDurationMin,
		AtSeaMin:                cur.AtSeaDurationMin,
		DelayMin:                model.DurationMin(cur.ScheduledDeparture, cur.LeftDockActual),
		SchedEpoch:              cur.ScheduledDeparture.UnixMilli(),
	}
	r.IsWeekend = c.ex.isWeekend(cur.ScheduledDeparture)
	return r
}
