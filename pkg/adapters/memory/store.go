package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/report"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*report.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*report.Report),
	}
}

// Save keeps the report in memory. Reports are immutable, so no copy is needed.
func (s *Store) Save(ctx context.Context, runID string, rep *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = rep
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, runID string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.data[runID]
	if !ok {
		return nil, ports.ErrReportNotFound
	}
	return rep, nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored run IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}
