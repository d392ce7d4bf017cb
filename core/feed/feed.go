// Package feed defines the contracts for the upstream vessel data provider.
package feed

import (
	"context"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
)

// Source is the external ferry data provider. Implementations fetch the
// fleet's current positions and per-vessel voyage history.
type Source interface {
	// Locations returns one snapshot per in-service vessel.
	Locations(ctx context.Context) ([]model.VesselLocation, error)

	// History returns completed voyage records for a vessel name within the
	// given date range, oldest first. Terminal names are free text.
	History(ctx context.Context, vesselName string, from, to time.Time) ([]model.VesselHistory, error)
}
