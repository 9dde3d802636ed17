package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// RecordRun inserts or replaces a run, keyed by ID.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without id", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Totals aggregates all recorded runs.
func (s *Store) Totals(ctx context.Context) (store.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var t store.Totals
	for _, r := range s.runs {
		t.Add(r)
	}
	return t, nil
}

var _ store.Store = (*Store)(nil)
