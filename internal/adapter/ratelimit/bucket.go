// Package ratelimit implements the per-credential token bucket. The bucket
// models upstream quota, not local work: tokens consumed by a request that is
// later cancelled stay spent.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

type Config struct {
	MaxTokens       int
	RefillPerSecond int
	AcquireInterval time.Duration
	MaxRetries      int
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:       constants.DefaultBucketCapacity,
		RefillPerSecond: constants.DefaultRefillPerSecond,
		AcquireInterval: constants.DefaultAcquireInterval,
		MaxRetries:      constants.DefaultAcquireRetries,
	}
}

// Bucket is a token bucket with whole-token refill bookkeeping. lastRefill
// only advances by the duration worth of whole tokens granted, so fractional
// refill progress is never lost between calls.
type Bucket struct {
	lastRefill time.Time
	now        func() time.Time
	cfg        Config
	tokens     int
	mu         sync.Mutex
}

func NewBucket(cfg Config) *Bucket {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = constants.DefaultBucketCapacity
	}
	if cfg.RefillPerSecond <= 0 {
		cfg.RefillPerSecond = constants.DefaultRefillPerSecond
	}
	if cfg.AcquireInterval <= 0 {
		cfg.AcquireInterval = constants.DefaultAcquireInterval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = constants.DefaultAcquireRetries
	}

	b := &Bucket{
		cfg: cfg,
		now: time.Now,
	}
	b.tokens = cfg.MaxTokens
	b.lastRefill = b.now()
	return b
}

// TryAcquire refills then decrements in one critical section.
func (b *Bucket) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Acquire polls TryAcquire every AcquireInterval until a token is granted,
// the retry budget runs out, or the context is cancelled. Cancellation before
// the token is taken does not affect counts.
func (b *Bucket) Acquire(ctx context.Context) error {
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.WrapError(domain.CodeCancelled, "rate limit wait cancelled", err)
		}

		if b.TryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return domain.WrapError(domain.CodeCancelled, "rate limit wait cancelled", ctx.Err())
		case <-time.After(b.cfg.AcquireInterval):
		}
	}

	return domain.NewError(domain.CodeRateLimited,
		fmt.Sprintf("no token after %d attempts", b.cfg.MaxRetries))
}

func (b *Bucket) AvailableTokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	return b.tokens
}

// Reset refills the bucket to capacity.
func (b *Bucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = b.cfg.MaxTokens
	b.lastRefill = b.now()
}

// refillLocked grants floor(elapsed * rate) whole tokens and advances
// lastRefill by exactly the duration those tokens represent.
func (b *Bucket) refillLocked() {
	if b.tokens >= b.cfg.MaxTokens {
		b.lastRefill = b.now()
		return
	}

	elapsed := b.now().Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}

	newTokens := int(elapsed.Milliseconds() * int64(b.cfg.RefillPerSecond) / 1000)
	if newTokens <= 0 {
		return
	}

	granted := newTokens
	if b.tokens+granted > b.cfg.MaxTokens {
		granted = b.cfg.MaxTokens - b.tokens
	}
	b.tokens += granted

	tokenDuration := time.Duration(newTokens) * time.Second / time.Duration(b.cfg.RefillPerSecond)
	b.lastRefill = b.lastRefill.Add(tokenDuration)
}
