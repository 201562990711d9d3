package exporter

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"reqcheck/internal/table"
)

// CacheKey identifies the export of a table in a format by the SHA-256 of the
// format and the full table content. Cells are length-prefixed, so different
// tables never share a key.
func CacheKey(format Format, t *table.Table) string {
	h := sha256.New()
	var buf []byte
	writeString := func(s string) {
		buf = binary.AppendUvarint(buf[:0], uint64(len(s)))
		h.Write(buf)
		h.Write([]byte(s))
	}

	writeString(string(format))
	buf = binary.AppendUvarint(buf[:0], uint64(len(t.Columns)))
	h.Write(buf)
	for _, col := range t.Columns {
		writeString(col)
	}
	buf = binary.AppendUvarint(buf[:0], uint64(len(t.Rows)))
	h.Write(buf)
	for _, row := range t.Rows {
		for _, cell := range row {
			writeString(cell)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	data     []byte
	cachedAt time.Time
	seq      uint64
	hitCount int
}

// CacheStats is a snapshot of the cache counters.
type CacheStats struct {
	Entries   int   `json:"entries"`
	MaxSize   int   `json:"max_size"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// Cache keeps rendered exports in memory, bounded to maxSize entries with the
// oldest entry evicted first. Concurrent builds of the same key are collapsed.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	maxSize   int
	hitCount  int64
	missCount int64
	seq       uint64
	group     singleflight.Group
}

// NewCache creates a cache holding at most maxSize artifacts. A maxSize of 0
// disables storage; builds are still deduplicated.
func NewCache(maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
	}
}

// Get returns the cached bytes for key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.missCount++
		return nil, false
	}
	entry.hitCount++
	c.entries[key] = entry
	c.hitCount++
	return entry.data, true
}

func (c *Cache) peek(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry.data, ok
}

// Set stores data under key.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.seq++
	c.entries[key] = cacheEntry{data: data, cachedAt: time.Now(), seq: c.seq}
}

// GetOrBuild returns the bytes cached under key, or runs build once for all
// concurrent callers of the same key and caches its result. The boolean
// reports whether the bytes came from the cache.
func (c *Cache) GetOrBuild(key string, build func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok := c.Get(key); ok {
		return data, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if data, ok := c.peek(key); ok {
			return data, nil
		}
		data, err := build()
		if err != nil {
			return nil, err
		}
		c.Set(key, data)
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Stats returns the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Entries:   len(c.entries),
		MaxSize:   c.maxSize,
		HitCount:  c.hitCount,
		MissCount: c.missCount,
	}
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestSeq uint64

	for key, entry := range c.entries {
		if oldestKey == "" || entry.seq < oldestSeq {
			oldestKey = key
			oldestSeq = entry.seq
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
