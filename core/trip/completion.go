package trip

import (
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

// Complete finalizes an active trip into a CompletedVesselTrip with tripEnd
// as the end anchor. It returns nil when the trip carries the sentinel start
// or never recorded an actual dock departure; both make duration math
// meaningless and the caller must skip finalization.
func Complete(t *model.ActiveVesselTrip, tripEnd time.Time) *model.CompletedVesselTrip {
	if t == nil || t.HasSentinelStart() || t.LeftDockActual.IsZero() {
		return nil
	}

	done := &model.CompletedVesselTrip{
		ActiveVesselTrip:  *t,
		TripKey:           model.MakeTripKey(t.VesselAbbrev, t.ScheduledDeparture, t.LastObserved),
		TripEnd:           tripEnd,
		AtDockDurationMin: model.DurationMin(t.TripStart, t.LeftDockActual),
		AtSeaDurationMin:  model.DurationMin(t.LeftDockActual, tripEnd),
		TotalDurationMin:  model.DurationMin(t.TripStart, tripEnd),
	}
	if !t.ScheduledDeparture.IsZero() {
		done.LeftDockDelayMin = model.DurationMin(t.ScheduledDeparture, t.LeftDockActual)
	}
	return done
}
