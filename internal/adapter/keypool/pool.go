package keypool

import (
	"fmt"
	"sync"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/logger"
)

// Pool owns the ordered slot collection. Selection prefers the slot with the
// most rate-limit tokens left, ties broken by least-recently-used, which
// balances round-robin under sustained load and favours the freshly refilled
// slot under burst.
type Pool struct {
	logger          *logger.StyledLogger
	slots           []*Slot
	refillPerSecond int
	mu              sync.Mutex
}

func NewPool(slots []*Slot, refillPerSecond int, log *logger.StyledLogger) (*Pool, error) {
	if len(slots) == 0 {
		return nil, domain.NewError(domain.CodeNoAvailableSlots, "no credentials configured")
	}
	if len(slots) > constants.MaxKeySlots {
		return nil, domain.NewError(domain.CodeBadInput,
			fmt.Sprintf("too many credentials: %d (max %d)", len(slots), constants.MaxKeySlots))
	}
	if refillPerSecond <= 0 {
		refillPerSecond = constants.DefaultRefillPerSecond
	}

	return &Pool{
		slots:           slots,
		refillPerSecond: refillPerSecond,
		logger:          log,
	}, nil
}

// GetSlot returns the best available slot or NO_AVAILABLE_SLOTS when every
// slot is disabled. The scan runs under the pool mutex; with at most ten
// slots the critical section stays trivial.
func (p *Pool) GetSlot() (*Slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var best *Slot
	bestTokens := -1

	for _, slot := range p.slots {
		if !slot.IsAvailable() {
			continue
		}

		tokens := slot.AvailableTokens()
		switch {
		case tokens > bestTokens:
			best = slot
			bestTokens = tokens
		case tokens == bestTokens && slot.lastUsedAt().Before(best.lastUsedAt()):
			best = slot
		}
	}

	if best == nil {
		return nil, domain.NewError(domain.CodeNoAvailableSlots, "all credential slots are disabled")
	}

	best.MarkUsed()
	return best, nil
}

func (p *Pool) GetSlotByID(id string) (*Slot, bool) {
	for _, slot := range p.slots {
		if slot.ID() == id {
			return slot, true
		}
	}
	return nil, false
}

// GetCapacity reports sustained request capacity: available counts usable
// slots (active or cooling down), max counts every configured slot.
func (p *Pool) GetCapacity() domain.PoolCapacity {
	usable := 0
	for _, slot := range p.slots {
		if slot.IsAvailable() {
			usable++
		}
	}

	return domain.PoolCapacity{
		Available: usable * p.refillPerSecond,
		Max:       len(p.slots) * p.refillPerSecond,
	}
}

// GetActiveSlotCount counts slots currently in the active state.
func (p *Pool) GetActiveSlotCount() int {
	count := 0
	for _, slot := range p.slots {
		if slot.State() == domain.SlotActive {
			count++
		}
	}
	return count
}

func (p *Pool) SlotCount() int {
	return len(p.slots)
}

func (p *Pool) GetMetrics() []domain.SlotMetrics {
	metrics := make([]domain.SlotMetrics, 0, len(p.slots))
	for _, slot := range p.slots {
		metrics = append(metrics, slot.Metrics())
	}
	return metrics
}

// ReportOutcome feeds a request outcome back into the slot's health and logs
// state transitions.
func (p *Pool) ReportOutcome(slot *Slot, err error) {
	before := slot.State()

	if err == nil {
		slot.RecordSuccess()
	} else {
		slot.RecordFailure(err)
	}

	if p.logger == nil {
		return
	}
	if after := slot.State(); after != before {
		p.logger.InfoSlotState("Credential slot", slot.Credential().DisplayName(), after,
			"consecutive_failures", slot.Metrics().ConsecutiveFails)
	} else if err != nil {
		p.logger.WarnWithSlot("Request failed on credential slot", slot.Credential().DisplayName(),
			"consecutive_failures", slot.Metrics().ConsecutiveFails, "error", err)
	}
}

func (p *Pool) Reset() {
	for _, slot := range p.slots {
		slot.Reset()
	}
}
