package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thushan/traigo/internal/adapter/breaker"
	"github.com/thushan/traigo/internal/core/domain"
)

// PoolStatus is the slice of the key pool the health check needs.
type PoolStatus interface {
	GetCapacity() domain.PoolCapacity
	GetActiveSlotCount() int
	SlotCount() int
}

// BreakerStatus is the slice of the circuit breaker the health check needs.
type BreakerStatus interface {
	State() breaker.State
}

// CacheStatus is the slice of the cache the health check needs.
type CacheStatus interface {
	Stats() domain.CacheStats
}

// HealthCheckService aggregates component status for the health command. The
// upstream probe reuses the stations endpoint, so a warm cache answers it
// without spending quota.
type HealthCheckService struct {
	pool     PoolStatus
	breaker  BreakerStatus
	cache    CacheStatus
	stations StationSource
	now      func() time.Time
}

func NewHealthCheckService(pool PoolStatus, cb BreakerStatus, cache CacheStatus, stations StationSource) *HealthCheckService {
	return &HealthCheckService{
		pool:     pool,
		breaker:  cb,
		cache:    cache,
		stations: stations,
		now:      time.Now,
	}
}

func (s *HealthCheckService) PerformHealthCheck(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{CheckedAt: s.now()}

	report.Components = append(report.Components,
		s.checkPool(),
		s.checkBreaker(),
		s.checkCache(),
		s.checkUpstream(ctx),
	)

	report.Status = domain.ComponentHealthy
	for _, component := range report.Components {
		switch component.Status {
		case domain.ComponentUnhealthy:
			report.Status = domain.ComponentUnhealthy
			return report
		case domain.ComponentDegraded:
			report.Status = domain.ComponentDegraded
		case domain.ComponentHealthy:
		}
	}
	return report
}

func (s *HealthCheckService) checkPool() domain.ComponentHealth {
	health := domain.ComponentHealth{Name: "key_pool"}

	active := s.pool.GetActiveSlotCount()
	total := s.pool.SlotCount()
	capacity := s.pool.GetCapacity()
	health.Detail = fmt.Sprintf("%d/%d slots active, %d req/s available", active, total, capacity.Available)

	switch {
	case active == 0:
		health.Status = domain.ComponentUnhealthy
	case active < total:
		health.Status = domain.ComponentDegraded
	default:
		health.Status = domain.ComponentHealthy
	}
	return health
}

func (s *HealthCheckService) checkBreaker() domain.ComponentHealth {
	health := domain.ComponentHealth{Name: "circuit_breaker"}

	state := s.breaker.State()
	health.Detail = string(state)

	switch state {
	case breaker.StateOpen:
		health.Status = domain.ComponentUnhealthy
	case breaker.StateHalfOpen:
		health.Status = domain.ComponentDegraded
	default:
		health.Status = domain.ComponentHealthy
	}
	return health
}

func (s *HealthCheckService) checkCache() domain.ComponentHealth {
	stats := s.cache.Stats()
	return domain.ComponentHealth{
		Name:   "cache",
		Status: domain.ComponentHealthy,
		Detail: fmt.Sprintf("memory %d entries, disk %d entries", stats.Memory.Entries, stats.Disk.Entries),
	}
}

func (s *HealthCheckService) checkUpstream(ctx context.Context) domain.ComponentHealth {
	health := domain.ComponentHealth{Name: "upstream"}

	started := s.now()
	stations, err := s.stations.GetStations(ctx)
	health.Latency = s.now().Sub(started)

	if err != nil {
		health.Status = domain.ComponentUnhealthy
		health.Detail = err.Error()
		return health
	}

	health.Status = domain.ComponentHealthy
	health.Detail = fmt.Sprintf("%d stations", len(stations))
	return health
}
