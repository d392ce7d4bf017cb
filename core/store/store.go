// Package store defines the persistence contracts consumed by the trip
// tracker and the training pipeline. Implementations live in infra/store.
package store

import (
	"context"

	"github.com/pugetops/ferrytrack/core/model"
)

// ActiveTripStore keeps the single live trip per vessel.
type ActiveTripStore interface {
	// ActiveTrip returns the live trip for the vessel, or nil when none
	// exists.
	ActiveTrip(ctx context.Context, vesselID int) (*model.ActiveVesselTrip, error)

	// ReplaceActiveTrip atomically installs trip as the only active row
	// for its vessel id, superseding any previous row.
	ReplaceActiveTrip(ctx context.Context, trip *model.ActiveVesselTrip) error
}

// CompletedTripStore is the append-only archive of finished trips.
type CompletedTripStore interface {
	InsertCompletedTrip(ctx context.Context, trip *model.CompletedVesselTrip) error

	// ListCompletedTrips pages through the archive ordered by scheduled
	// departure ascending. It returns an empty slice once offset runs
	// past the end.
	ListCompletedTrips(ctx context.Context, offset, limit int) ([]model.CompletedVesselTrip, error)
}

// SnapshotStore keeps the latest location per vessel. PutSnapshot is a
// no-op when the stored snapshot is not older than loc.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, loc model.VesselLocation) error
	Snapshot(ctx context.Context, vesselID int) (*model.VesselLocation, error)
}

// ModelStore persists trained regression models keyed by terminal pair and
// model type. PutModel replaces wholesale.
type ModelStore interface {
	PutModel(ctx context.Context, params *model.ModelParameters) error

	// Model returns nil when nothing exists for the pair and type; that
	// is an expected condition, not an error.
	Model(ctx context.Context, pair model.TerminalPair, typ model.ModelType) (*model.ModelParameters, error)

	DeleteAllModels(ctx context.Context) error
}
