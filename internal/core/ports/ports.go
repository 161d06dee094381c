// Package ports defines the narrow interfaces the access layer is wired
// through. Adapters return concrete types; consumers accept these.
package ports

import (
	"context"
	"time"

	"github.com/thushan/traigo/internal/core/domain"
)

// CacheStore is a TTL'd keyed byte store. Implementations decide tiering.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context) error
	Stats() domain.CacheStats
}

// TokenSource yields a valid bearer token, fetching one when needed.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
	IsTokenValid() bool
	ClearCache()
}

// Limiter is the per-credential token bucket.
type Limiter interface {
	TryAcquire() bool
	Acquire(ctx context.Context) error
	AvailableTokens() int
	Reset()
}

// FareSource answers origin/destination fare lookups. The TPASS calculator
// takes this rather than the full client so tests can inject a table.
type FareSource func(ctx context.Context, fromID, toID string) (int, error)

// TransferTimes answers minimum transfer minutes per station or station pair.
type TransferTimes interface {
	MinTransferTime(stationID string) int
	TransferTimeBetween(a, b string) int
}

// RetryObserver is invoked once per retry for observability.
type RetryObserver func(err error, attempt int, nextDelay time.Duration)
