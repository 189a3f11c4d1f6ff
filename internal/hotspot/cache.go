package hotspot

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
)

// CacheEntry is one memoized detection.
type CacheEntry struct {
	Timestamp time.Time
	Hotspots  []Hotspot
	Meta      Meta
}

// CacheStats is a point-in-time view of the cache counters.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithRecorder reports hits and misses to rec.
func WithRecorder(rec *metrics.Recorder) CacheOption {
	return func(c *Cache) { c.rec = rec }
}

// WithCacheLogger sets the logger used for sweep reports.
func WithCacheLogger(l logging.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// Cache memoizes sanitized hotspot sets for a short TTL. It is safe for
// concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]CacheEntry
	ttl      time.Duration
	capacity int
	hits     uint64
	misses   uint64

	now    func() time.Time
	rec    *metrics.Recorder
	logger logging.Logger
}

// NewCache creates a cache. ttl and capacity fall back to 10 minutes and 100
// entries when not positive.
func NewCache(ttl time.Duration, capacity int, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	c := &Cache{
		entries:  make(map[string]CacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey builds the composite key for a detection. Viewport and
// full-page captures normalize Y against different heights, so fullPage is
// part of the key.
func CacheKey(url, device string, fullPage, parity bool, promptSig string) string {
	return strings.Join([]string{url, device, strconv.FormatBool(fullPage), strconv.FormatBool(parity), promptSig}, "|")
}

// Get returns a copy of the live entry for key. Expired entries are removed
// and reported as misses.
func (c *Cache) Get(key string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Sub(e.Timestamp) >= c.ttl {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		c.rec.CacheMiss()
		return CacheEntry{}, false
	}

	c.hits++
	c.rec.CacheHit()
	e.Hotspots = cloneHotspots(e.Hotspots)
	return e, true
}

// Set stores a copy of hotspots under key. When the table grows past its
// capacity, expired entries are swept and, if that is not enough, the
// oldest entries are evicted.
func (c *Cache) Set(key string, hotspots []Hotspot, meta Meta) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CacheEntry{
		Timestamp: c.now(),
		Hotspots:  cloneHotspots(hotspots),
		Meta:      meta,
	}
	if len(c.entries) > c.capacity {
		c.sweepLocked()
	}
}

// Len returns the number of stored entries, live or not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the entry count and hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

func (c *Cache) sweepLocked() {
	now := c.now()
	expired := 0
	for k, e := range c.entries {
		if now.Sub(e.Timestamp) >= c.ttl {
			delete(c.entries, k)
			expired++
		}
	}

	evicted := 0
	if over := len(c.entries) - c.capacity; over > 0 {
		keys := make([]string, 0, len(c.entries))
		for k := range c.entries {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return c.entries[keys[i]].Timestamp.Before(c.entries[keys[j]].Timestamp)
		})
		for _, k := range keys[:over] {
			delete(c.entries, k)
			evicted++
		}
	}

	c.logger.Debug("hotspot cache swept",
		logging.Int("expired", expired),
		logging.Int("evicted", evicted),
		logging.Int("entries", len(c.entries)))
}

func cloneHotspots(in []Hotspot) []Hotspot {
	if in == nil {
		return nil
	}
	out := make([]Hotspot, len(in))
	copy(out, in)
	return out
}
