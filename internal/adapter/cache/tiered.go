package cache

import (
	"context"
	"time"

	"github.com/thushan/traigo/internal/core/domain"
)

// TieredStore reads through memory then disk, promoting disk hits back into
// memory. Writes go to both tiers; a disk write failure does not fail the
// request, the memory tier still serves it.
type TieredStore struct {
	memory *MemoryStore
	disk   *DiskStore
}

func NewTieredStore(memory *MemoryStore, disk *DiskStore) *TieredStore {
	return &TieredStore{memory: memory, disk: disk}
}

func (t *TieredStore) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, ok := t.memory.Get(ctx, key); ok {
		return value, true
	}

	value, ok := t.disk.Get(ctx, key)
	if !ok {
		return nil, false
	}

	// promote with a short horizon; disk keeps the authoritative expiry
	_ = t.memory.Set(ctx, key, value, promotionTTL)
	return value, true
}

const promotionTTL = 5 * time.Minute

func (t *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return t.disk.Set(ctx, key, value, ttl)
}

func (t *TieredStore) Delete(ctx context.Context, key string) {
	t.memory.Delete(ctx, key)
	t.disk.Delete(ctx, key)
}

func (t *TieredStore) Clear(ctx context.Context) error {
	if err := t.memory.Clear(ctx); err != nil {
		return err
	}
	return t.disk.Clear(ctx)
}

// Prune sweeps expired entries from both tiers.
func (t *TieredStore) Prune(ctx context.Context) int {
	return t.memory.Prune(ctx) + t.disk.Prune(ctx)
}

func (t *TieredStore) Stats() domain.CacheStats {
	return domain.CacheStats{
		Memory: t.memory.Stats().Memory,
		Disk:   t.disk.Stats().Disk,
	}
}
