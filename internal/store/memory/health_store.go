// Package memory contains an in-memory health report store for tests and
// single-process runs without Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/interviewbot/jobscout/internal/ingest"
)

// HealthStore keeps reports in memory, newest first.
type HealthStore struct {
	mu      sync.RWMutex
	reports []ingest.HealthReport
}

// New returns a memory HealthStore.
func New() *HealthStore {
	return &HealthStore{}
}

// SaveReport prepends the report.
func (s *HealthStore) SaveReport(_ context.Context, report ingest.HealthReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append([]ingest.HealthReport{report}, s.reports...)
	return nil
}

// ListReports returns up to limit reports, newest first.
func (s *HealthStore) ListReports(_ context.Context, limit int) ([]ingest.HealthReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}
	out := make([]ingest.HealthReport, limit)
	copy(out, s.reports[:limit])
	return out, nil
}
