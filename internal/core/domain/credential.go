package domain

import (
	"fmt"
	"time"
)

// Credential is one TDX client-credentials pair. Immutable after load.
type Credential struct {
	ID           string
	ClientID     string
	ClientSecret string
	Label        string
}

func (c Credential) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// Token is a cached bearer token. Valid while now+buffer stays before ExpiresAt.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (t Token) ValidAt(now time.Time, buffer time.Duration) bool {
	return t.AccessToken != "" && !now.Add(buffer).After(t.ExpiresAt)
}

// SlotState is the health state of one key slot.
type SlotState string

const (
	SlotActive   SlotState = "active"
	SlotDisabled SlotState = "disabled"
	SlotCooldown SlotState = "cooldown"
)

// SlotMetrics is a point-in-time snapshot of one slot's counters.
type SlotMetrics struct {
	LastUsed           time.Time
	DisabledUntil      time.Time
	ID                 string
	Label              string
	State              SlotState
	LastError          string
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	ConsecutiveFails   int
	AvailableTokens    int
}

func (m SlotMetrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100
}

// PoolCapacity reports sustained capacity across usable slots.
type PoolCapacity struct {
	Available int
	Max       int
}

func (c PoolCapacity) String() string {
	return fmt.Sprintf("%d/%d", c.Available, c.Max)
}
