// Package store provides the storage adapters behind the core/store
// contracts: an in-process map store for tests and development, and a
// Postgres document store for deployments.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pugetops/ferrytrack/core/model"
)

// MemoryStore implements every core/store contract in process. It is safe
// for concurrent use and is the default backend for tests and local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	active    map[int]model.ActiveVesselTrip
	completed []model.CompletedVesselTrip
	snapshots map[int]model.VesselLocation
	models    map[string]model.ModelParameters
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		active:    map[int]model.ActiveVesselTrip{},
		snapshots: map[int]model.VesselLocation{},
		models:    map[string]model.ModelParameters{},
	}
}

// ActiveTrip returns the live trip for a vessel, or nil.
func (s *MemoryStore) ActiveTrip(_ context.Context, vesselID int) (*model.ActiveVesselTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.active[vesselID]
	if !ok {
		return nil, nil
	}
	cp := t
	return &cp, nil
}

// ReplaceActiveTrip installs trip as the single active row for its vessel.
func (s *MemoryStore) ReplaceActiveTrip(_ context.Context, trip *model.ActiveVesselTrip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[trip.VesselID] = *trip
	return nil
}

// InsertCompletedTrip appends one completed trip.
func (s *MemoryStore) InsertCompletedTrip(_ context.Context, trip *model.CompletedVesselTrip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, *trip)
	return nil
}

// ListCompletedTrips pages the archive ordered by scheduled departure
// ascending.
func (s *MemoryStore) ListCompletedTrips(_ context.Context, offset, limit int) ([]model.CompletedVesselTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := append([]model.CompletedVesselTrip(nil), s.completed...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScheduledDeparture.Before(sorted[j].ScheduledDeparture)
	})
	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return append([]model.CompletedVesselTrip(nil), sorted[offset:end]...), nil
}

// PutSnapshot stores the snapshot unless a newer one is already present.
func (s *MemoryStore) PutSnapshot(_ context.Context, loc model.VesselLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.snapshots[loc.VesselID]; ok && !loc.TimeStamp.After(cur.TimeStamp) {
		return nil
	}
	s.snapshots[loc.VesselID] = loc
	return nil
}

// Snapshot returns the latest snapshot for a vessel, or nil.
func (s *MemoryStore) Snapshot(_ context.Context, vesselID int) (*model.VesselLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.snapshots[vesselID]
	if !ok {
		return nil, nil
	}
	cp := l
	return &cp, nil
}

func modelKey(pair model.TerminalPair, typ model.ModelType) string {
	return pair.String() + ":" + typ.String()
}

// PutModel replaces the stored model for the pair and type wholesale.
func (s *MemoryStore) PutModel(_ context.Context, params *model.ModelParameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[modelKey(params.Pair, params.Type)] = *params
	return nil
}

// Model returns nil when no model exists for the pair and type.
func (s *MemoryStore) Model(_ context.Context, pair model.TerminalPair, typ model.ModelType) (*model.ModelParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[modelKey(pair, typ)]
	if !ok {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

// DeleteAllModels drops every stored model.
func (s *MemoryStore) DeleteAllModels(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = map[string]model.ModelParameters{}
	return nil
}

// CompletedCount reports how many trips have been archived.
func (s *MemoryStore) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.completed)
}
