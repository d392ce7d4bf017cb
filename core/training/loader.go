package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pugetops/ferrytrack/core/feed"
	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/core/terminals"
)

// LoaderConfig bounds the historical scan. The batch cap keeps worst-case
// memory and latency bounded no matter how much history accumulates.
type LoaderConfig struct {
	BatchSize  int `json:"batch_size"`
	MaxBatches int `json:"max_batches"`
}

// SetDefaults applies the production scan bounds.
func (c *LoaderConfig) SetDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 500
	}
	if c.MaxBatches == 0 {
		c.MaxBatches = 40
	}
}

// Loader retrieves historical trips either from the completed-trip store or
// from the raw per-vessel feed history.
type Loader struct {
	completed store.CompletedTripStore
	source    feed.Source
	terms     *terminals.Table
	cfg       LoaderConfig
	log       logger.Logger
}

// NewLoader builds a Loader. source may be nil when only the store path is
// used.
func NewLoader(completed store.CompletedTripStore, source feed.Source, terms *terminals.Table, cfg LoaderConfig, log logger.Logger) *Loader {
	cfg.SetDefaults()
	return &Loader{completed: completed, source: source, terms: terms, cfg: cfg, log: log}
}

// FromStore pages through stored completed trips in fixed-size batches up to
// the configured cap.
func (l *Loader) FromStore(ctx context.Context) ([]model.CompletedVesselTrip, error) {
	var out []model.CompletedVesselTrip
	for batch := 0; batch < l.cfg.MaxBatches; batch++ {
		trips, err := l.completed.ListCompletedTrips(ctx, batch*l.cfg.BatchSize, l.cfg.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("list completed trips batch %d: %w", batch, err)
		}
		out = append(out, trips...)
		if len(trips) < l.cfg.BatchSize {
			break
		}
	}
	l.log.Infof("loaded %d completed trips from store", len(out))
	return out, nil
}

// FromFeed rebuilds completed-trip equivalents from the raw feed history of
// the named vessels. Consecutive voyages chain the previous arrival into the
// next trip's start; records with unmapped terminal names are dropped, never
// fatal.
func (l *Loader) FromFeed(ctx context.Context, vesselNames []string, from, to time.Time) ([]model.CompletedVesselTrip, error) {
	if l.source == nil {
		return nil, fmt.Errorf("no feed source configured")
	}
	var out []model.CompletedVesselTrip
	for _, name := range vesselNames {
		hist, err := l.source.History(ctx, name, from, to)
		if err != nil {
			// One vessel's history failure does not abort the run.
			l.log.Errorf("history for %s: %v", name, err)
			continue
		}
		out = append(out, l.convertHistory(name, hist)...)
	}
	l.log.Infof("rebuilt %d trips from feed history", len(out))
	return out, nil
}

func (l *Loader) convertHistory(vesselName string, hist []model.VesselHistory) []model.CompletedVesselTrip {
	sort.Slice(hist, func(i, j int) bool { return hist[i].ScheduledDep.Before(hist[j].ScheduledDep) })

	var out []model.CompletedVesselTrip
	for i := 1; i < len(hist); i++ {
		prev, cur := hist[i-1], hist[i]
		depAbbrev, ok := l.terms.AbbrevForName(cur.Departing)
		if !ok {
			l.log.Debugf("%s: unknown departing terminal %q, dropped", vesselName, cur.Departing)
			continue
		}
		arrAbbrev, ok := l.terms.AbbrevForName(cur.Arriving)
		if !ok {
			l.log.Debugf("%s: unknown arriving terminal %q, dropped", vesselName, cur.Arriving)
			continue
		}
		prevArr, ok := l.terms.AbbrevForName(prev.Arriving)
		if !ok || prevArr != depAbbrev {
			continue
		}
		if prev.EstArrival.IsZero() || cur.ActualDepart.IsZero() || cur.EstArrival.IsZero() {
			continue
		}

		// The previous arrival at this dock is the trip start anchor.
		t := model.CompletedVesselTrip{
			ActiveVesselTrip: model.ActiveVesselTrip{
				VesselName:              vesselName,
				VesselAbbrev:            vesselName,
				DepartingTerminalAbbrev: depAbbrev,
				ArrivingTerminalAbbrev:  arrAbbrev,
				ScheduledDeparture:      cur.ScheduledDep,
				LeftDockActual:          cur.ActualDepart,
				TripStart:               prev.EstArrival,
				LastObserved:            cur.EstArrival,
			},
			TripKey: model.MakeTripKey(vesselName, cur.ScheduledDep, cur.EstArrival),
			TripEnd: cur.EstArrival,
		}
		t.AtDockDurationMin = model.DurationMin(t.TripStart, t.LeftDockActual)
		t.AtSeaDurationMin = model.DurationMin(t.LeftDockActual, t.TripEnd)
		t.TotalDurationMin = model.DurationMin(t.TripStart, t.TripEnd)
		t.LeftDockDelayMin = model.DurationMin(t.ScheduledDeparture, t.LeftDockActual)
		out = append(out, t)
	}
	return out
}
