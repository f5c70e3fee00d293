package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/roots"
	"github.com/cognicore/keyroot/pkg/keyroot/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	reports map[string]store.Report
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{reports: make(map[string]store.Report)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveReport inserts or replaces a report, keyed by ID.
func (s *Store) SaveReport(ctx context.Context, r store.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report id is required", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = copyReport(r)
	return nil
}

// GetReport implements store.Store.
func (s *Store) GetReport(ctx context.Context, id string) (store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return store.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return copyReport(r), nil
}

// ListReports implements store.Store.
func (s *Store) ListReports(ctx context.Context, listing string, limit int) ([]store.ReportInfo, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]store.ReportInfo, 0, len(s.reports))
	for _, r := range s.reports {
		if listing != "" && r.Listing != listing {
			continue
		}
		infos = append(infos, r.Info())
	}
	// ULIDs sort by creation time.
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID > infos[j].ID })
	if len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

func copyReport(r store.Report) store.Report {
	out := r
	out.Matched = append([]string(nil), r.Matched...)
	out.PriorityRoots = append([]string(nil), r.PriorityRoots...)
	out.Units = append([]store.UnitReport(nil), r.Units...)
	out.Roots = append([]roots.Summary(nil), r.Roots...)
	return out
}
