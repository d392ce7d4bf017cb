// Package backfill seeds the completed-trip archive from historical feed
// data, so training has material before the live tracker has run for weeks.
package backfill

import (
	"context"
	"time"

	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/core/training"
)

// Run rebuilds completed trips from feed history for the named vessels and
// appends them to the archive. It returns the number of trips written; a
// failed insert aborts the run since a partial backfill would skew training.
func Run(ctx context.Context, loader *training.Loader, completed store.CompletedTripStore, vessels []string, from, to time.Time, log logger.Logger) (int, error) {
	trips, err := loader.FromFeed(ctx, vessels, from, to)
	if err != nil {
		return 0, err
	}

	written := 0
	for i := range trips {
		if err := completed.InsertCompletedTrip(ctx, &trips[i]); err != nil {
			return written, err
		}
		written++
	}
	log.Infof("backfilled %d trips for %d vessels (%s to %s)",
		written, len(vessels), from.Format("2006-01-02"), to.Format("2006-01-02"))
	return written, nil
}
