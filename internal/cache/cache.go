// Package cache implements the versioned table cache.
//
// Entries are stored in a [kv.Store] under a fixed namespace prefix. Each entry
// carries an opaque version token chosen by the caller; a read only hits when
// the stored token equals the one the caller currently expects. A mismatched
// entry is treated as absent, never repaired, so the caller re-fetches and
// overwrites it.
//
// The cache is a best-effort optimization. No method returns an error:
// storage and decoding failures are logged and behave like a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/634252452/Sheets2Website/internal/csvparse"
	"github.com/634252452/Sheets2Website/internal/kv"
)

// DefaultPrefix isolates cache keys from unrelated data in the same store.
const DefaultPrefix = "s2w:"

// Entry is the stored form of one cached table.
type Entry struct {
	Version   string         `json:"v"`
	Timestamp int64          `json:"t"` // unix milliseconds
	Payload   csvparse.Table `json:"data"`
}

// EntryInfo summarizes a stored entry for status reporting.
type EntryInfo struct {
	Key      string
	Version  string
	StoredAt time.Time
	Rows     int
}

// Cache is a versioned table cache over a key-value store.
type Cache struct {
	store  kv.Store
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides the namespace prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger overrides the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache over store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: DefaultPrefix,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefix returns the namespace prefix in use.
func (c *Cache) Prefix() string {
	return c.prefix
}

// Put stores payload under key with the given version, overwriting any
// previous entry. Failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, key string, payload csvparse.Table, version string) {
	if payload == nil {
		payload = csvparse.Table{}
	}
	data, err := json.Marshal(Entry{
		Version:   version,
		Timestamp: c.now().UnixMilli(),
		Payload:   payload,
	})
	if err != nil {
		c.logger.Warn("cache put failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, c.prefix+key, string(data)); err != nil {
		c.logger.Warn("cache put failed", "key", key, "error", err)
		return
	}
	c.logger.Debug("cache put", "key", key, "version", version, "rows", len(payload))
}

// Get returns the payload stored under key when its version equals
// expectedVersion exactly. Any other outcome reports false.
func (c *Cache) Get(ctx context.Context, key, expectedVersion string) (csvparse.Table, bool) {
	entry, ok := c.load(ctx, c.prefix+key)
	if !ok {
		return nil, false
	}
	if entry.Version != expectedVersion {
		c.logger.Debug("cache stale",
			"key", key,
			"stored_version", entry.Version,
			"expected_version", expectedVersion,
		)
		return nil, false
	}
	if entry.Payload == nil {
		entry.Payload = csvparse.Table{}
	}
	return entry.Payload, true
}

// Clear removes every entry under the namespace prefix. Keys outside the
// prefix are left untouched.
func (c *Cache) Clear(ctx context.Context) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn("cache clear failed", "error", err)
		return
	}

	removed := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		if err := c.store.Remove(ctx, k); err != nil {
			c.logger.Warn("cache remove failed", "key", k, "error", err)
			continue
		}
		removed++
	}
	c.logger.Info("cache cleared", "entries_removed", removed)
}

// Entries lists the decodable entries under the namespace prefix, sorted by key.
func (c *Cache) Entries(ctx context.Context) []EntryInfo {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn("cache list failed", "error", err)
		return nil
	}

	var out []EntryInfo
	for _, k := range keys {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		entry, ok := c.load(ctx, k)
		if !ok {
			continue
		}
		out = append(out, EntryInfo{
			Key:      strings.TrimPrefix(k, c.prefix),
			Version:  entry.Version,
			StoredAt: time.UnixMilli(entry.Timestamp),
			Rows:     len(entry.Payload),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// load reads and decodes a raw store key.
func (c *Cache) load(ctx context.Context, storeKey string) (Entry, bool) {
	var entry Entry

	raw, err := c.store.Get(ctx, storeKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warn("cache get failed", "key", storeKey, "error", err)
		}
		return entry, false
	}
	if raw == "" {
		return entry, false
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Debug("cache entry undecodable", "key", storeKey, "error", err)
		return entry, false
	}
	return entry, true
}
