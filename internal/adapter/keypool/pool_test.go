package keypool

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/logger"
	"github.com/thushan/traigo/theme"
)

type fakeAuth struct{}

func (fakeAuth) GetToken(context.Context) (string, error) { return "tok", nil }
func (fakeAuth) IsTokenValid() bool                       { return true }
func (fakeAuth) ClearCache()                              {}

type fakeLimiter struct {
	tokens int
}

func (f *fakeLimiter) TryAcquire() bool {
	if f.tokens <= 0 {
		return false
	}
	f.tokens--
	return true
}
func (f *fakeLimiter) Acquire(context.Context) error { return nil }
func (f *fakeLimiter) AvailableTokens() int          { return f.tokens }
func (f *fakeLimiter) Reset()                        { f.tokens = 50 }

func newTestSlot(id string, tokens int, cfg SlotConfig) *Slot {
	cred := domain.Credential{ID: id, ClientID: id, ClientSecret: "secret"}
	return NewSlot(cred, fakeAuth{}, &fakeLimiter{tokens: tokens}, cfg)
}

func newTestPool(t *testing.T, slots ...*Slot) *Pool {
	t.Helper()
	pool, err := NewPool(slots, 5, nil)
	require.NoError(t, err)
	return pool
}

func TestPoolRequiresSlots(t *testing.T) {
	_, err := NewPool(nil, 5, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNoAvailableSlots, domain.CodeOf(err))
}

func TestGetSlotPrefersMostTokens(t *testing.T) {
	a := newTestSlot("slot-1", 10, DefaultSlotConfig())
	b := newTestSlot("slot-2", 40, DefaultSlotConfig())
	pool := newTestPool(t, a, b)

	got, err := pool.GetSlot()
	require.NoError(t, err)
	assert.Equal(t, "slot-2", got.ID())
}

func TestGetSlotTieBreaksLeastRecentlyUsed(t *testing.T) {
	a := newTestSlot("slot-1", 20, DefaultSlotConfig())
	b := newTestSlot("slot-2", 20, DefaultSlotConfig())
	pool := newTestPool(t, a, b)

	base := time.Unix(1700000000, 0)
	a.now = func() time.Time { return base }
	b.now = func() time.Time { return base }
	a.MarkUsed()
	b.now = func() time.Time { return base.Add(-time.Minute) }
	b.MarkUsed()

	got, err := pool.GetSlot()
	require.NoError(t, err)
	assert.Equal(t, "slot-2", got.ID())
}

func TestSlotDisableAndIsolation(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 2, FailureCooldown: 30 * time.Second}
	a := newTestSlot("slot-1", 50, cfg)
	b := newTestSlot("slot-2", 50, cfg)
	pool := newTestPool(t, a, b)

	now := time.Unix(1700000000, 0)
	a.now = func() time.Time { return now }

	boom := errors.New("upstream 500")
	a.RecordFailure(boom)
	a.RecordFailure(boom)

	assert.Equal(t, domain.SlotDisabled, a.State())
	assert.False(t, a.IsAvailable())
	assert.Equal(t, 1, pool.GetActiveSlotCount())

	for i := 0; i < 5; i++ {
		got, err := pool.GetSlot()
		require.NoError(t, err)
		assert.Equal(t, "slot-2", got.ID())
	}
}

func TestSlotCooldownRecovery(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 2, FailureCooldown: 30 * time.Second}
	s := newTestSlot("slot-1", 50, cfg)

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	s.RecordFailure(errors.New("boom"))
	s.RecordFailure(errors.New("boom"))
	require.Equal(t, domain.SlotDisabled, s.State())

	// window lapses: lazy transition to cooldown on observation
	now = now.Add(31 * time.Second)
	assert.Equal(t, domain.SlotCooldown, s.State())
	assert.True(t, s.IsAvailable())

	// first success returns the slot to active
	s.RecordSuccess()
	assert.Equal(t, domain.SlotActive, s.State())
	assert.True(t, s.Metrics().DisabledUntil.IsZero())
}

func TestSlotFailureDuringCooldownRestartsWindow(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 2, FailureCooldown: 30 * time.Second}
	s := newTestSlot("slot-1", 50, cfg)

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	s.RecordFailure(errors.New("boom"))
	s.RecordFailure(errors.New("boom"))
	now = now.Add(31 * time.Second)
	require.Equal(t, domain.SlotCooldown, s.State())

	s.RecordFailure(errors.New("boom again"))
	assert.Equal(t, domain.SlotDisabled, s.State())
	assert.Equal(t, now.Add(30*time.Second), s.Metrics().DisabledUntil)
}

func TestNoAvailableSlots(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 1, FailureCooldown: time.Minute}
	a := newTestSlot("slot-1", 50, cfg)
	pool := newTestPool(t, a)

	a.RecordFailure(errors.New("boom"))

	_, err := pool.GetSlot()
	require.Error(t, err)
	assert.Equal(t, domain.CodeNoAvailableSlots, domain.CodeOf(err))
}

func TestCapacityInvariant(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 1, FailureCooldown: time.Minute}
	a := newTestSlot("slot-1", 50, cfg)
	b := newTestSlot("slot-2", 50, cfg)
	c := newTestSlot("slot-3", 50, cfg)
	pool := newTestPool(t, a, b, c)

	capacity := pool.GetCapacity()
	assert.Equal(t, 15, capacity.Max)
	assert.Equal(t, 15, capacity.Available)
	assert.LessOrEqual(t, capacity.Available, capacity.Max)

	b.RecordFailure(errors.New("boom"))

	capacity = pool.GetCapacity()
	assert.Equal(t, 15, capacity.Max)
	assert.Equal(t, 10, capacity.Available)
	assert.LessOrEqual(t, capacity.Available, capacity.Max)
}

func TestPoolReset(t *testing.T) {
	cfg := SlotConfig{FailureThreshold: 1, FailureCooldown: time.Minute}
	a := newTestSlot("slot-1", 10, cfg)
	pool := newTestPool(t, a)

	a.RecordFailure(errors.New("boom"))
	require.False(t, a.IsAvailable())

	pool.Reset()
	assert.True(t, a.IsAvailable())
	assert.Equal(t, int64(0), a.Metrics().TotalRequests)
	assert.Equal(t, 50, a.AvailableTokens())
}

func TestReportOutcomeLogsFailuresAndTransitions(t *testing.T) {
	var buf bytes.Buffer
	styled := logger.NewStyledLogger(slog.New(slog.NewTextHandler(&buf, nil)), theme.GetTheme("default"))

	cfg := SlotConfig{FailureThreshold: 2, FailureCooldown: time.Minute}
	s := newTestSlot("slot-1", 50, cfg)
	pool, err := NewPool([]*Slot{s}, 5, styled)
	require.NoError(t, err)

	// first failure: no transition, logged as a warning naming the slot
	pool.ReportOutcome(s, errors.New("upstream 500"))
	assert.Contains(t, buf.String(), "Request failed on credential slot")
	assert.Contains(t, buf.String(), "slot-1")

	// second failure disables the slot: transition logged instead
	buf.Reset()
	pool.ReportOutcome(s, errors.New("upstream 500"))
	assert.Contains(t, buf.String(), string(domain.SlotDisabled))

	// success is silent
	buf.Reset()
	active := newTestSlot("slot-2", 50, cfg)
	pool.ReportOutcome(active, nil)
	assert.Empty(t, buf.String())
}

func TestGetSlotByID(t *testing.T) {
	a := newTestSlot("slot-1", 10, DefaultSlotConfig())
	pool := newTestPool(t, a)

	got, ok := pool.GetSlotByID("slot-1")
	assert.True(t, ok)
	assert.Equal(t, a, got)

	_, ok = pool.GetSlotByID("slot-9")
	assert.False(t, ok)
}
