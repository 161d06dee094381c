package domain

import "time"

const (
	StatusStringHealthy   = "healthy"
	StatusStringDegraded  = "degraded"
	StatusStringUnhealthy = "unhealthy"
)

type ComponentStatus string

const (
	ComponentHealthy   ComponentStatus = StatusStringHealthy
	ComponentDegraded  ComponentStatus = StatusStringDegraded
	ComponentUnhealthy ComponentStatus = StatusStringUnhealthy
)

// ComponentHealth is one component's contribution to the aggregate report.
type ComponentHealth struct {
	Name    string
	Status  ComponentStatus
	Detail  string
	Latency time.Duration
}

// HealthReport aggregates component status for the health command.
type HealthReport struct {
	CheckedAt  time.Time
	Components []ComponentHealth
	Status     ComponentStatus
}

// CacheTierStats reports one cache tier's counters.
type CacheTierStats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// CacheStats reports both tiers.
type CacheStats struct {
	Memory CacheTierStats
	Disk   CacheTierStats
}
