package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pugetops/ferrytrack/core/model"
)

// PostgresStore keeps trips, snapshots and models as JSONB documents with
// the lookup keys promoted to columns.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to the database, verifies the connection and
// bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS active_trips (
			vessel_id  INT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS completed_trips (
			id        BIGSERIAL PRIMARY KEY,
			vessel_id INT NOT NULL,
			sched_dep TIMESTAMPTZ,
			doc       JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS completed_trips_sched_dep_idx ON completed_trips (sched_dep)`,
		`CREATE INDEX IF NOT EXISTS completed_trips_vessel_idx ON completed_trips (vessel_id)`,
		`CREATE TABLE IF NOT EXISTS vessel_snapshots (
			vessel_id   INT PRIMARY KEY,
			observed_at TIMESTAMPTZ NOT NULL,
			doc         JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trip_models (
			departing  TEXT NOT NULL,
			arriving   TEXT NOT NULL,
			model_type TEXT NOT NULL,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (departing, arriving, model_type)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ActiveTrip returns the live trip for a vessel, or nil.
func (s *PostgresStore) ActiveTrip(ctx context.Context, vesselID int) (*model.ActiveVesselTrip, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM active_trips WHERE vessel_id = $1`, vesselID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active trip: %w", err)
	}
	var t model.ActiveVesselTrip
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decode active trip: %w", err)
	}
	return &t, nil
}

// ReplaceActiveTrip upserts the single live row for the vessel. The primary
// key makes the replace atomic; there is no delete+insert window.
func (s *PostgresStore) ReplaceActiveTrip(ctx context.Context, trip *model.ActiveVesselTrip) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("encode active trip: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO active_trips (vessel_id, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (vessel_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		trip.VesselID, doc)
	if err != nil {
		return fmt.Errorf("replace active trip: %w", err)
	}
	return nil
}

// InsertCompletedTrip appends one finished trip to the archive.
func (s *PostgresStore) InsertCompletedTrip(ctx context.Context, trip *model.CompletedVesselTrip) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("encode completed trip: %w", err)
	}
	var sched any
	if !trip.ScheduledDeparture.IsZero() {
		sched = trip.ScheduledDeparture
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO completed_trips (vessel_id, sched_dep, doc) VALUES ($1, $2, $3)`,
		trip.VesselID, sched, doc)
	if err != nil {
		return fmt.Errorf("insert completed trip: %w", err)
	}
	return nil
}

// ListCompletedTrips pages the archive ordered by scheduled departure.
func (s *PostgresStore) ListCompletedTrips(ctx context.Context, offset, limit int) ([]model.CompletedVesselTrip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM completed_trips
		ORDER BY sched_dep ASC NULLS LAST, id ASC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list completed trips: %w", err)
	}
	defer rows.Close()

	var out []model.CompletedVesselTrip
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t model.CompletedVesselTrip
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decode completed trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PutSnapshot replaces the stored snapshot only when loc is newer.
func (s *PostgresStore) PutSnapshot(ctx context.Context, loc model.VesselLocation) error {
	doc, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vessel_snapshots (vessel_id, observed_at, doc) VALUES ($1, $2, $3)
		ON CONFLICT (vessel_id) DO UPDATE SET observed_at = EXCLUDED.observed_at, doc = EXCLUDED.doc
		WHERE vessel_snapshots.observed_at < EXCLUDED.observed_at`,
		loc.VesselID, loc.TimeStamp, doc)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the latest location for a vessel, or nil.
func (s *PostgresStore) Snapshot(ctx context.Context, vesselID int) (*model.VesselLocation, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM vessel_snapshots WHERE vessel_id = $1`, vesselID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	var l model.VesselLocation
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &l, nil
}

// PutModel replaces the stored model for the pair and type wholesale.
func (s *PostgresStore) PutModel(ctx context.Context, params *model.ModelParameters) error {
	doc, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trip_models (departing, arriving, model_type, doc, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (departing, arriving, model_type)
		DO UPDATE SET doc = EXCLUDED.doc, created_at = now()`,
		params.Pair.Departing, params.Pair.Arriving, params.Type.String(), doc)
	if err != nil {
		return fmt.Errorf("put model: %w", err)
	}
	return nil
}

// Model returns nil when no model exists for the pair and type.
func (s *PostgresStore) Model(ctx context.Context, pair model.TerminalPair, typ model.ModelType) (*model.ModelParameters, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM trip_models
		WHERE departing = $1 AND arriving = $2 AND model_type = $3`,
		pair.Departing, pair.Arriving, typ.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query model: %w", err)
	}
	var m model.ModelParameters
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}

// DeleteAllModels drops every trained model.
func (s *PostgresStore) DeleteAllModels(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trip_models`); err != nil {
		return fmt.Errorf("delete models: %w", err)
	}
	return nil
}
