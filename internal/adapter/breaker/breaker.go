// Package breaker implements the three-state circuit breaker guarding the
// TDX upstream. One breaker is shared across every slot: an outage is a
// property of the upstream, not of a single credential.
package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

type Config struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	// ShouldTrip classifies failures; errors it rejects (permanent client
	// errors) pass through without counting toward the threshold.
	ShouldTrip func(error) bool
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: constants.DefaultBreakerFailureThreshold,
		SuccessThreshold: constants.DefaultBreakerSuccessThreshold,
		OpenTimeout:      constants.DefaultBreakerOpenTimeout,
	}
}

// Transition is one state change in the bounded log.
type Transition struct {
	At   time.Time
	From State
	To   State
}

// Metrics is a point-in-time snapshot of breaker counters.
type Metrics struct {
	OpenedAt         time.Time
	State            State
	Transitions      []Transition
	TotalRequests    int64
	FailedRequests   int64
	RejectedRequests int64
	ConsecutiveFails int
	ConsecutiveOKs   int
}

type CircuitBreaker struct {
	now func() time.Time
	cfg Config

	mu               sync.Mutex
	state            State
	consecutiveFails int
	consecutiveOKs   int
	openedAt         time.Time
	totalRequests    int64
	failedRequests   int64
	rejectedRequests int64
	transitions      []Transition
}

func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = constants.DefaultBreakerFailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = constants.DefaultBreakerSuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = constants.DefaultBreakerOpenTimeout
	}

	return &CircuitBreaker{
		cfg:   cfg,
		state: StateClosed,
		now:   time.Now,
	}
}

// Execute runs fn unless the breaker is open. In open state the call is
// rejected immediately with the remaining wait; fn is never invoked.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++

	if cb.state == StateOpen {
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed < cb.cfg.OpenTimeout {
			cb.rejectedRequests++
			e := domain.NewError(domain.CodeCircuitBreakerOpen,
				fmt.Sprintf("circuit open, retry in %v", cb.cfg.OpenTimeout-elapsed))
			e.RetryAfter = cb.cfg.OpenTimeout - elapsed
			return e
		}
		cb.transitionLocked(StateHalfOpen)
	}

	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.consecutiveFails = 0
		cb.consecutiveOKs++

		if cb.state == StateHalfOpen && cb.consecutiveOKs >= cb.cfg.SuccessThreshold {
			cb.transitionLocked(StateClosed)
		}
		return
	}

	if cb.cfg.ShouldTrip != nil && !cb.cfg.ShouldTrip(err) {
		// permanent failures say nothing about upstream health
		return
	}

	cb.failedRequests++
	cb.consecutiveOKs = 0
	cb.consecutiveFails++

	switch cb.state {
	case StateHalfOpen:
		cb.transitionLocked(StateOpen)
	case StateClosed:
		if cb.consecutiveFails >= cb.cfg.FailureThreshold {
			cb.transitionLocked(StateOpen)
		}
	case StateOpen:
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) GetMetrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	transitions := make([]Transition, len(cb.transitions))
	copy(transitions, cb.transitions)

	return Metrics{
		State:            cb.state,
		TotalRequests:    cb.totalRequests,
		FailedRequests:   cb.failedRequests,
		RejectedRequests: cb.rejectedRequests,
		ConsecutiveFails: cb.consecutiveFails,
		ConsecutiveOKs:   cb.consecutiveOKs,
		OpenedAt:         cb.openedAt,
		Transitions:      transitions,
	}
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.consecutiveFails = 0
	cb.consecutiveOKs = 0
	cb.openedAt = time.Time{}
	cb.totalRequests = 0
	cb.failedRequests = 0
	cb.rejectedRequests = 0
	cb.transitions = nil
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	from := cb.state
	cb.state = to

	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
		cb.consecutiveOKs = 0
	case StateHalfOpen:
		cb.consecutiveOKs = 0
		cb.consecutiveFails = 0
	case StateClosed:
		cb.openedAt = time.Time{}
	}

	cb.transitions = append(cb.transitions, Transition{From: from, To: to, At: cb.now()})
	if len(cb.transitions) > constants.BreakerTransitionLogSize {
		cb.transitions = cb.transitions[len(cb.transitions)-constants.BreakerTransitionLogSize:]
	}
}
