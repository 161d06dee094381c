// Package retry runs an operation with exponential backoff. Only transient
// failures are retried; classification lives in classify.go.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/core/ports"
)

type Config struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercentage  float64
	// IsRetryable overrides the default transient classifier when set.
	IsRetryable func(error) bool
	OnRetry     ports.RetryObserver
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:        constants.DefaultMaxRetries,
		BaseDelay:         constants.DefaultRetryBaseDelay,
		MaxDelay:          constants.DefaultRetryMaxDelay,
		BackoffMultiplier: constants.DefaultBackoffMultiplier,
		JitterPercentage:  constants.DefaultJitterPercentage,
	}
}

// Runner executes operations with at most MaxRetries retries, so MaxRetries+1
// attempts total.
type Runner struct {
	cfg      Config
	sleep    func(ctx context.Context, d time.Duration) error
	jitterFn func(max time.Duration) time.Duration
}

func NewRunner(cfg Config) *Runner {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = constants.DefaultRetryBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = constants.DefaultRetryMaxDelay
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = constants.DefaultBackoffMultiplier
	}

	return &Runner{
		cfg:   cfg,
		sleep: sleepCtx,
		jitterFn: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

// Run invokes fn until it succeeds, returns a non-retryable error, retries
// are exhausted, or ctx is cancelled. The last error is returned as-is so the
// taxonomy code survives.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.delayFor(attempt)
			if r.cfg.OnRetry != nil {
				r.cfg.OnRetry(lastErr, attempt, delay)
			}
			if err := r.sleep(ctx, delay); err != nil {
				return domain.WrapError(domain.CodeCancelled, "retry wait cancelled", err)
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !r.isRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return domain.WrapError(domain.CodeCancelled, "request cancelled", ctx.Err())
		}
	}

	return lastErr
}

func (r *Runner) isRetryable(err error) bool {
	if r.cfg.IsRetryable != nil {
		return r.cfg.IsRetryable(err)
	}
	return IsTransient(err)
}

// delayFor computes the backoff for the k-th retry: base*mult^(k-1) capped at
// MaxDelay, plus uniform jitter of at most JitterPercentage of the delay.
func (r *Runner) delayFor(attempt int) time.Duration {
	backoff := float64(r.cfg.BaseDelay) * math.Pow(r.cfg.BackoffMultiplier, float64(attempt-1))
	delay := time.Duration(backoff)
	if delay > r.cfg.MaxDelay || delay <= 0 {
		delay = r.cfg.MaxDelay
	}

	if r.cfg.JitterPercentage > 0 {
		delay += r.jitterFn(time.Duration(float64(delay) * r.cfg.JitterPercentage))
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
