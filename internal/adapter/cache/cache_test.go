package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTiered(t *testing.T) (*TieredStore, *MemoryStore, *DiskStore) {
	t.Helper()
	memory := NewMemoryStore()
	disk, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return NewTieredStore(memory, disk), memory, disk
}

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "stations:TRA", []byte(`[{"id":"1000"}]`), time.Minute))

	got, ok := m.Get(ctx, "stations:TRA")
	require.True(t, ok)
	assert.Equal(t, []byte(`[{"id":"1000"}]`), got)

	_, ok = m.Get(ctx, "stations:THSR")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "alerts", []byte("[]"), 15*time.Minute))

	_, ok := m.Get(ctx, "alerts")
	require.True(t, ok)

	now = now.Add(16 * time.Minute)
	_, ok = m.Get(ctx, "alerts")
	assert.False(t, ok)

	stats := m.Stats()
	assert.Equal(t, 0, stats.Memory.Entries)
}

func TestMemoryStorePrune(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, m.Prune(ctx))
	assert.Equal(t, 1, m.Stats().Memory.Entries)
}

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d, err := NewDiskStore(dir)
	require.NoError(t, err)

	key := "timetable:1000:1020:2026-08-26"
	require.NoError(t, d.Set(ctx, key, []byte(`{"trains":[]}`), time.Hour))

	got, ok := d.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"trains":[]}`), got)

	// keys with separators must not escape the cache directory
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), string(os.PathSeparator))
}

func TestDiskStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	d1, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, d1.Set(ctx, "fare:1000:1020", []byte(`{"fare":43}`), time.Hour))

	d2, err := NewDiskStore(dir)
	require.NoError(t, err)
	got, ok := d2.Get(ctx, "fare:1000:1020")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"fare":43}`), got)
}

func TestDiskStoreExpiry(t *testing.T) {
	ctx := context.Background()
	d, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Set(ctx, "alerts", []byte("[]"), 15*time.Minute))

	now = now.Add(16 * time.Minute)
	_, ok := d.Get(ctx, "alerts")
	assert.False(t, ok)
	assert.Equal(t, 0, d.Stats().Disk.Entries)
}

func TestDiskStoreCorruptEntryDropped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d, err := NewDiskStore(dir)
	require.NoError(t, err)

	require.NoError(t, d.Set(ctx, "stations", []byte("[]"), time.Hour))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{not json"), 0o644))

	_, ok := d.Get(ctx, "stations")
	assert.False(t, ok)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStorePrune(t *testing.T) {
	ctx := context.Background()
	d, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, d.Set(ctx, "long", []byte("2"), time.Hour))

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, d.Prune(ctx))
	assert.Equal(t, 1, d.Stats().Disk.Entries)
}

func TestTieredReadThroughPromotes(t *testing.T) {
	ctx := context.Background()
	tiered, memory, disk := newTestTiered(t)

	// entry only on disk, as after a restart
	require.NoError(t, disk.Set(ctx, "lines", []byte(`["WL"]`), time.Hour))

	got, ok := tiered.Get(ctx, "lines")
	require.True(t, ok)
	assert.Equal(t, []byte(`["WL"]`), got)

	// promoted: second read hits memory
	_, ok = memory.Get(ctx, "lines")
	assert.True(t, ok)
}

func TestTieredSetWritesBothTiers(t *testing.T) {
	ctx := context.Background()
	tiered, memory, disk := newTestTiered(t)

	require.NoError(t, tiered.Set(ctx, "exits:1000", []byte("[]"), time.Hour))

	_, ok := memory.Get(ctx, "exits:1000")
	assert.True(t, ok)
	_, ok = disk.Get(ctx, "exits:1000")
	assert.True(t, ok)
}

func TestTieredDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	tiered, _, _ := newTestTiered(t)

	require.NoError(t, tiered.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, tiered.Set(ctx, "b", []byte("2"), time.Hour))

	tiered.Delete(ctx, "a")
	_, ok := tiered.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, tiered.Clear(ctx))
	_, ok = tiered.Get(ctx, "b")
	assert.False(t, ok)

	stats := tiered.Stats()
	assert.Equal(t, 0, stats.Memory.Entries)
	assert.Equal(t, 0, stats.Disk.Entries)
}

func TestTieredStats(t *testing.T) {
	ctx := context.Background()
	tiered, _, _ := newTestTiered(t)

	require.NoError(t, tiered.Set(ctx, "a", []byte("abc"), time.Hour))

	_, _ = tiered.Get(ctx, "a")
	_, _ = tiered.Get(ctx, "missing")

	stats := tiered.Stats()
	assert.Equal(t, 1, stats.Memory.Entries)
	assert.Equal(t, 1, stats.Disk.Entries)
	assert.Equal(t, int64(1), stats.Memory.Hits)
	assert.GreaterOrEqual(t, stats.Memory.Misses, int64(1))
	assert.Equal(t, int64(1), stats.Disk.Misses)
}

func TestZeroTTLNotStored(t *testing.T) {
	ctx := context.Background()
	tiered, _, _ := newTestTiered(t)

	require.NoError(t, tiered.Set(ctx, "live", []byte("x"), 0))
	_, ok := tiered.Get(ctx, "live")
	assert.False(t, ok)
}
