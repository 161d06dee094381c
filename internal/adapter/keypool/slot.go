// Package keypool rotates requests across TDX credentials. Each slot bundles
// one credential with its own auth service, token bucket and health counters;
// the pool picks a healthy slot per request so one bad key never starves the
// others.
package keypool

import (
	"sync"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/core/ports"
)

type SlotConfig struct {
	FailureThreshold int
	FailureCooldown  time.Duration
	RecoveryTime     time.Duration
}

func DefaultSlotConfig() SlotConfig {
	return SlotConfig{
		FailureThreshold: constants.DefaultSlotFailureThreshold,
		FailureCooldown:  constants.DefaultSlotFailureCooldown,
		RecoveryTime:     constants.DefaultSlotRecoveryTime,
	}
}

// Slot owns one credential's auth service and rate limiter. All health state
// sits behind the slot mutex; the pool never touches it directly.
type Slot struct {
	auth    ports.TokenSource
	limiter ports.Limiter
	now     func() time.Time

	credential domain.Credential
	cfg        SlotConfig

	mu                 sync.Mutex
	state              domain.SlotState
	consecutiveFails   int
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	lastUsed           time.Time
	lastError          string
	disabledUntil      time.Time
}

func NewSlot(credential domain.Credential, auth ports.TokenSource, limiter ports.Limiter, cfg SlotConfig) *Slot {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = constants.DefaultSlotFailureThreshold
	}
	if cfg.FailureCooldown <= 0 {
		cfg.FailureCooldown = constants.DefaultSlotFailureCooldown
	}

	return &Slot{
		credential: credential,
		auth:       auth,
		limiter:    limiter,
		cfg:        cfg,
		state:      domain.SlotActive,
		now:        time.Now,
	}
}

func (s *Slot) ID() string                    { return s.credential.ID }
func (s *Slot) Credential() domain.Credential { return s.credential }
func (s *Slot) Auth() ports.TokenSource       { return s.auth }
func (s *Slot) Limiter() ports.Limiter        { return s.limiter }

// IsAvailable reports whether the slot may serve a request. A disabled slot
// whose window has lapsed moves to cooldown here, lazily.
func (s *Slot) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshStateLocked()
	return s.state != domain.SlotDisabled
}

func (s *Slot) AvailableTokens() int {
	return s.limiter.AvailableTokens()
}

// RecordSuccess clears the failure streak; the first success after cooldown
// returns the slot to active.
func (s *Slot) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshStateLocked()

	s.totalRequests++
	s.successfulRequests++
	s.consecutiveFails = 0
	s.lastUsed = s.now()

	if s.state == domain.SlotCooldown {
		s.state = domain.SlotActive
		s.disabledUntil = time.Time{}
	}
}

// RecordFailure counts the failure and disables the slot once the streak
// reaches the threshold. A failure during cooldown restarts the window.
func (s *Slot) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshStateLocked()

	s.totalRequests++
	s.failedRequests++
	s.consecutiveFails++
	s.lastUsed = s.now()
	if err != nil {
		s.lastError = err.Error()
	}

	switch s.state {
	case domain.SlotCooldown:
		s.state = domain.SlotDisabled
		s.disabledUntil = s.now().Add(s.cfg.FailureCooldown)
	case domain.SlotActive:
		if s.consecutiveFails >= s.cfg.FailureThreshold {
			s.state = domain.SlotDisabled
			s.disabledUntil = s.now().Add(s.cfg.FailureCooldown)
		}
	case domain.SlotDisabled:
		// window already running
	}
}

func (s *Slot) MarkUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
}

func (s *Slot) State() domain.SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshStateLocked()
	return s.state
}

func (s *Slot) Metrics() domain.SlotMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshStateLocked()

	return domain.SlotMetrics{
		ID:                 s.credential.ID,
		Label:              s.credential.DisplayName(),
		State:              s.state,
		TotalRequests:      s.totalRequests,
		SuccessfulRequests: s.successfulRequests,
		FailedRequests:     s.failedRequests,
		ConsecutiveFails:   s.consecutiveFails,
		LastUsed:           s.lastUsed,
		LastError:          s.lastError,
		DisabledUntil:      s.disabledUntil,
		AvailableTokens:    s.limiter.AvailableTokens(),
	}
}

func (s *Slot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.SlotActive
	s.consecutiveFails = 0
	s.totalRequests = 0
	s.successfulRequests = 0
	s.failedRequests = 0
	s.lastError = ""
	s.disabledUntil = time.Time{}
	s.limiter.Reset()
}

func (s *Slot) lastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// refreshStateLocked expires a lapsed disabled window into cooldown.
func (s *Slot) refreshStateLocked() {
	if s.state == domain.SlotDisabled && !s.now().Before(s.disabledUntil) {
		s.state = domain.SlotCooldown
	}
}
