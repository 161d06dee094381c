package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/adapter/breaker"
	"github.com/thushan/traigo/internal/core/domain"
)

type fakePoolStatus struct {
	active, total int
}

func (f fakePoolStatus) GetCapacity() domain.PoolCapacity {
	return domain.PoolCapacity{Available: f.active * 5, Max: f.total * 5}
}
func (f fakePoolStatus) GetActiveSlotCount() int { return f.active }
func (f fakePoolStatus) SlotCount() int          { return f.total }

type fakeBreakerStatus struct{ state breaker.State }

func (f fakeBreakerStatus) State() breaker.State { return f.state }

type fakeCacheStatus struct{}

func (fakeCacheStatus) Stats() domain.CacheStats { return domain.CacheStats{} }

type fakeStationSource struct {
	stations []domain.Station
	err      error
}

func (f fakeStationSource) GetStations(context.Context) ([]domain.Station, error) {
	return f.stations, f.err
}

func TestHealthAllComponentsHealthy(t *testing.T) {
	svc := NewHealthCheckService(
		fakePoolStatus{active: 3, total: 3},
		fakeBreakerStatus{state: breaker.StateClosed},
		fakeCacheStatus{},
		fakeStationSource{stations: testStations},
	)

	report := svc.PerformHealthCheck(context.Background())
	assert.Equal(t, domain.ComponentHealthy, report.Status)
	require.Len(t, report.Components, 4)
	for _, component := range report.Components {
		assert.Equal(t, domain.ComponentHealthy, component.Status, component.Name)
	}
}

func TestHealthDegradedWhenSlotsDisabled(t *testing.T) {
	svc := NewHealthCheckService(
		fakePoolStatus{active: 1, total: 3},
		fakeBreakerStatus{state: breaker.StateClosed},
		fakeCacheStatus{},
		fakeStationSource{stations: testStations},
	)

	report := svc.PerformHealthCheck(context.Background())
	assert.Equal(t, domain.ComponentDegraded, report.Status)
}

func TestHealthUnhealthyWhenBreakerOpen(t *testing.T) {
	svc := NewHealthCheckService(
		fakePoolStatus{active: 3, total: 3},
		fakeBreakerStatus{state: breaker.StateOpen},
		fakeCacheStatus{},
		fakeStationSource{stations: testStations},
	)

	report := svc.PerformHealthCheck(context.Background())
	assert.Equal(t, domain.ComponentUnhealthy, report.Status)
}

func TestHealthUnhealthyWhenUpstreamFails(t *testing.T) {
	svc := NewHealthCheckService(
		fakePoolStatus{active: 3, total: 3},
		fakeBreakerStatus{state: breaker.StateClosed},
		fakeCacheStatus{},
		fakeStationSource{err: errors.New("dial tcp: connection refused")},
	)

	report := svc.PerformHealthCheck(context.Background())
	assert.Equal(t, domain.ComponentUnhealthy, report.Status)
}

func TestHealthNoSlotsIsUnhealthy(t *testing.T) {
	svc := NewHealthCheckService(
		fakePoolStatus{active: 0, total: 2},
		fakeBreakerStatus{state: breaker.StateClosed},
		fakeCacheStatus{},
		fakeStationSource{stations: testStations},
	)

	report := svc.PerformHealthCheck(context.Background())
	assert.Equal(t, domain.ComponentUnhealthy, report.Status)
}
