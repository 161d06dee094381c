package cache

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/thushan/traigo/internal/core/domain"
)

const diskEntryExt = ".json"

// diskEntry is the on-disk envelope. Value round-trips through base64 via
// encoding/json's []byte handling.
type diskEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

// DiskStore is the filesystem tier. One file per key under dir; writes go to
// a temp file first and rename into place so a crash never leaves a torn
// entry behind.
type DiskStore struct {
	dir    string
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.WrapError(domain.CodeAPIError, "creating cache directory", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

func (d *DiskStore) Get(_ context.Context, key string) ([]byte, bool) {
	data, err := os.ReadFile(d.pathFor(key))
	if err != nil {
		d.misses.Add(1)
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// corrupt entry, drop it
		_ = os.Remove(d.pathFor(key))
		d.misses.Add(1)
		return nil, false
	}

	if d.now().After(entry.ExpiresAt) {
		_ = os.Remove(d.pathFor(key))
		d.misses.Add(1)
		return nil, false
	}

	d.hits.Add(1)
	return entry.Value, true
}

func (d *DiskStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(diskEntry{Value: value, ExpiresAt: d.now().Add(ttl)})
	if err != nil {
		return domain.WrapError(domain.CodeAPIError, "encoding cache entry", err)
	}

	tmp, err := os.CreateTemp(d.dir, "entry-*.tmp")
	if err != nil {
		return domain.WrapError(domain.CodeAPIError, "creating cache temp file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return domain.WrapError(domain.CodeAPIError, "writing cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return domain.WrapError(domain.CodeAPIError, "closing cache temp file", err)
	}

	if err := os.Rename(tmp.Name(), d.pathFor(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return domain.WrapError(domain.CodeAPIError, "committing cache entry", err)
	}
	return nil
}

func (d *DiskStore) Delete(_ context.Context, key string) {
	_ = os.Remove(d.pathFor(key))
}

func (d *DiskStore) Clear(_ context.Context) error {
	names, err := d.entryNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
			return domain.WrapError(domain.CodeAPIError, "clearing cache", err)
		}
	}
	return nil
}

// Prune removes expired and unreadable entries, returning the count removed.
func (d *DiskStore) Prune(_ context.Context) int {
	names, err := d.entryNames()
	if err != nil {
		return 0
	}

	now := d.now()
	removed := 0
	for _, name := range names {
		path := filepath.Join(d.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry diskEntry
		if err := json.Unmarshal(data, &entry); err != nil || now.After(entry.ExpiresAt) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed
}

func (d *DiskStore) Stats() domain.CacheStats {
	var bytes int64
	entries := 0
	if names, err := d.entryNames(); err == nil {
		for _, name := range names {
			info, err := os.Stat(filepath.Join(d.dir, name))
			if err != nil {
				continue
			}
			entries++
			bytes += info.Size()
		}
	}

	return domain.CacheStats{
		Disk: domain.CacheTierStats{
			Entries: entries,
			Bytes:   bytes,
			Hits:    d.hits.Load(),
			Misses:  d.misses.Load(),
		},
	}
}

// pathFor maps a cache key to a filename. Keys contain slashes and query
// characters, so they are percent-encoded.
func (d *DiskStore) pathFor(key string) string {
	return filepath.Join(d.dir, url.QueryEscape(key)+diskEntryExt)
}

func (d *DiskStore) entryNames() ([]string, error) {
	dirEntries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, domain.WrapError(domain.CodeAPIError, "reading cache directory", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != diskEntryExt {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}
