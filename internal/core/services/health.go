package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// HealthCheckTimeout bounds each dependency check.
const HealthCheckTimeout = 800 * time.Millisecond

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthService runs dependency checks concurrently.
type HealthService struct {
	checks  map[string]HealthCheck
	started time.Time
	timeout time.Duration
	now     func() time.Time
}

// NewHealthService creates a health service with the given named checks.
func NewHealthService(checks map[string]HealthCheck) *HealthService {
	return &HealthService{
		checks:  checks,
		started: time.Now(),
		timeout: HealthCheckTimeout,
		now:     time.Now,
	}
}

// Check runs every check under its own timeout. The report is OK only when
// every check passes.
func (s *HealthService) Check(ctx context.Context) domain.HealthReport {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]domain.DependencyStatus, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.checks[name](cctx); err != nil {
				statuses[i] = domain.DependencyStatus{Error: err.Error()}
				return
			}
			statuses[i] = domain.DependencyStatus{OK: true}
		}()
	}
	wg.Wait()

	now := s.now()
	report := domain.HealthReport{
		OK:     true,
		Checks: make(map[string]domain.DependencyStatus, len(names)),
		Uptime: now.Sub(s.started),
		Time:   now,
	}
	for i, name := range names {
		report.Checks[name] = statuses[i]
		if !statuses[i].OK {
			report.OK = false
		}
	}
	return report
}
