package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/core/domain"
)

func newTestBucket(capacity, refillPerSec int) (*Bucket, *time.Time) {
	b := NewBucket(Config{
		MaxTokens:       capacity,
		RefillPerSecond: refillPerSec,
		AcquireInterval: time.Millisecond,
		MaxRetries:      3,
	})

	now := time.Unix(1700000000, 0)
	b.now = func() time.Time { return now }
	b.lastRefill = now
	return b, &now
}

func TestBucketBurstThenEmpty(t *testing.T) {
	b, _ := newTestBucket(5, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, b.TryAcquire(), "acquire %d", i)
	}
	assert.False(t, b.TryAcquire())
	assert.Equal(t, 0, b.AvailableTokens())
}

func TestBucketRefillWholeTokens(t *testing.T) {
	b, now := newTestBucket(10, 5)

	for i := 0; i < 10; i++ {
		require.True(t, b.TryAcquire())
	}

	// 5/s means a token every 200ms; 300ms grants exactly one and banks
	// the fractional 100ms for the next refill
	*now = now.Add(300 * time.Millisecond)
	assert.Equal(t, 1, b.AvailableTokens())

	*now = now.Add(100 * time.Millisecond)
	assert.Equal(t, 2, b.AvailableTokens())
}

func TestBucketRefillCapsAtMax(t *testing.T) {
	b, now := newTestBucket(5, 5)

	require.True(t, b.TryAcquire())
	*now = now.Add(time.Hour)
	assert.Equal(t, 5, b.AvailableTokens())
}

func TestBucketOneSecondWindowInvariant(t *testing.T) {
	capacity, rate := 10, 5
	b, now := newTestBucket(capacity, rate)

	succeeded := 0
	for step := 0; step < 1000; step++ {
		if b.TryAcquire() {
			succeeded++
		}
		*now = now.Add(time.Millisecond)
	}

	assert.LessOrEqual(t, succeeded, capacity+rate)
}

func TestAcquireExhaustsRetries(t *testing.T) {
	b := NewBucket(Config{
		MaxTokens:       1,
		RefillPerSecond: 1,
		AcquireInterval: time.Millisecond,
		MaxRetries:      2,
	})
	// future refill times keep the bucket empty
	b.now = func() time.Time { return time.Unix(1700000000, 0) }
	b.tokens = 0
	b.lastRefill = b.now()

	err := b.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, &domain.Error{Code: domain.CodeRateLimited}))
}

func TestAcquireCancelled(t *testing.T) {
	b := NewBucket(Config{MaxTokens: 1, RefillPerSecond: 1, AcquireInterval: 50 * time.Millisecond, MaxRetries: 50})
	b.tokens = 0
	b.lastRefill = time.Now().Add(time.Hour) // no refill during the test

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.CodeCancelled, domain.CodeOf(err))
}

func TestBucketReset(t *testing.T) {
	b, _ := newTestBucket(3, 1)

	require.True(t, b.TryAcquire())
	require.True(t, b.TryAcquire())
	b.Reset()
	assert.Equal(t, 3, b.AvailableTokens())
}

func TestBucketConcurrentAcquires(t *testing.T) {
	b, _ := newTestBucket(50, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryAcquire() {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, succeeded)
}
