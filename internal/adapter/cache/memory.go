// Package cache provides the two-tier response cache: a process-local memory
// tier in front of a filesystem tier that survives restarts. Entries carry
// their own expiry; expired entries are treated as misses and removed on read.
package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/thushan/traigo/internal/core/domain"
)

type memoryEntry struct {
	expiresAt time.Time
	value     []byte
}

// MemoryStore is the in-process tier, backed by a concurrent map.
type MemoryStore struct {
	entries *xsync.Map[string, memoryEntry]
	hits    *xsync.Counter
	misses  *xsync.Counter
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: xsync.NewMap[string, memoryEntry](),
		hits:    xsync.NewCounter(),
		misses:  xsync.NewCounter(),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	entry, ok := m.entries.Load(key)
	if !ok {
		m.misses.Inc()
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		m.entries.Delete(key)
		m.misses.Inc()
		return nil, false
	}

	m.hits.Inc()
	return entry.value, true
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.entries.Store(key, memoryEntry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) {
	m.entries.Delete(key)
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.entries.Clear()
	return nil
}

// Prune removes expired entries and returns the count removed.
func (m *MemoryStore) Prune(_ context.Context) int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key string, entry memoryEntry) bool {
		if now.After(entry.expiresAt) {
			m.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (m *MemoryStore) Stats() domain.CacheStats {
	var bytes int64
	entries := 0
	m.entries.Range(func(_ string, entry memoryEntry) bool {
		entries++
		bytes += int64(len(entry.value))
		return true
	})

	return domain.CacheStats{
		Memory: domain.CacheTierStats{
			Entries: entries,
			Bytes:   bytes,
			Hits:    m.hits.Value(),
			Misses:  m.misses.Value(),
		},
	}
}
