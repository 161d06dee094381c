package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/core/domain"
)

func newTestRunner(cfg Config) (*Runner, *[]time.Duration) {
	r := NewRunner(cfg)
	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	r.jitterFn = func(time.Duration) time.Duration { return 0 }
	return r, &slept
}

func transientErr(status int) error {
	e := domain.NewError(domain.CodeAPIError, "upstream error")
	e.StatusCode = status
	return e
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	r, slept := newTestRunner(DefaultConfig())

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRunRetriesTransientThenSucceeds(t *testing.T) {
	r, slept := newTestRunner(Config{
		MaxRetries:        3,
		BaseDelay:         500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	})

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return transientErr(503)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *slept)
}

func TestRunExhaustsRetries(t *testing.T) {
	r, _ := newTestRunner(Config{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, BackoffMultiplier: 2})

	calls := 0
	boom := transientErr(500)
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "maxRetries=3 means four attempts")
	assert.Equal(t, 500, domain.StatusOf(err))
}

func TestRunStopsOnPermanentError(t *testing.T) {
	r, slept := newTestRunner(DefaultConfig())

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return transientErr(404)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRunStopsOnAuthError(t *testing.T) {
	r, _ := newTestRunner(DefaultConfig())

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return domain.NewError(domain.CodeAuthError, "invalid credentials")
	})

	require.Error(t, err)
	assert.Equal(t, domain.CodeAuthError, domain.CodeOf(err))
	assert.Equal(t, 1, calls)
}

func TestDelayCappedAtMax(t *testing.T) {
	r, slept := newTestRunner(Config{
		MaxRetries:        5,
		BaseDelay:         time.Second,
		MaxDelay:          4 * time.Second,
		BackoffMultiplier: 2,
	})

	_ = r.Run(context.Background(), func(context.Context) error {
		return transientErr(502)
	})

	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second,
	}, *slept)
}

func TestJitterBounded(t *testing.T) {
	r := NewRunner(Config{
		MaxRetries:        1,
		BaseDelay:         time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
		JitterPercentage:  0.1,
	})

	for i := 0; i < 100; i++ {
		d := r.delayFor(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestOnRetryObserver(t *testing.T) {
	var attempts []int
	cfg := Config{
		MaxRetries:        2,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2,
		OnRetry: func(err error, attempt int, next time.Duration) {
			attempts = append(attempts, attempt)
			assert.Error(t, err)
			assert.Greater(t, next, time.Duration(0))
		},
	}
	r, _ := newTestRunner(cfg)

	_ = r.Run(context.Background(), func(context.Context) error {
		return transientErr(503)
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRunCancelledDuringWait(t *testing.T) {
	r := NewRunner(Config{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: time.Hour, BackoffMultiplier: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, func(context.Context) error {
		return transientErr(503)
	})

	require.Error(t, err)
	assert.Equal(t, domain.CodeCancelled, domain.CodeOf(err))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 408", transientErr(408), true},
		{"http 429", transientErr(429), true},
		{"http 503", transientErr(503), true},
		{"http 404", transientErr(404), false},
		{"http 400", transientErr(400), false},
		{"auth error", domain.NewError(domain.CodeAuthError, "bad key"), false},
		{"bad input", domain.NewError(domain.CodeBadInput, "bad date"), false},
		{"breaker open", domain.NewError(domain.CodeCircuitBreakerOpen, "open"), false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"conn reset", syscall.ECONNRESET, true},
		{"timeout text", errors.New("dial tcp: i/o timeout"), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestCustomRetryablePredicate(t *testing.T) {
	sentinel := errors.New("flaky")
	r, _ := newTestRunner(Config{
		MaxRetries:        2,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2,
		IsRetryable:       func(err error) bool { return errors.Is(err, sentinel) },
	})

	calls := 0
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}
