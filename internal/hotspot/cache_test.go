package hotspot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func counterValue(t *testing.T, rec *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "https://a.com|mobile|false|true|abc", CacheKey("https://a.com", "mobile", false, true, "abc"))
	assert.NotEqual(t, CacheKey("u", "desktop", false, false, "s1"), CacheKey("u", "desktop", false, false, "s2"))
	assert.NotEqual(t, CacheKey("u", "desktop", false, false, "s"), CacheKey("u", "desktop", false, true, "s"))
	assert.NotEqual(t, CacheKey("u", "desktop", false, false, "s"), CacheKey("u", "desktop", true, false, "s"))
}

func TestCache_GetSet(t *testing.T) {
	clock := newFakeClock()
	rec := metrics.New()
	c := NewCache(10*time.Minute, 100, WithClock(clock.Now), WithRecorder(rec))

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", sampleHotspots, Meta{Engine: "heuristic"})
	e, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, sampleHotspots, e.Hotspots)
	assert.Equal(t, "heuristic", e.Meta.Engine)
	assert.Equal(t, clock.Now(), e.Timestamp)

	stats := c.Stats()
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1}, stats)
	assert.Equal(t, 1.0, counterValue(t, rec, "heatmap_cache_hits_total"))
	assert.Equal(t, 1.0, counterValue(t, rec, "heatmap_cache_misses_total"))
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache(time.Minute, 10)
	in := []Hotspot{{X: 0.1, Width: 0.1, Height: 0.1, Confidence: 0.5}}
	c.Set("k", in, Meta{})

	in[0].X = 0.9
	e, _ := c.Get("k")
	assert.Equal(t, 0.1, e.Hotspots[0].X)

	e.Hotspots[0].X = 0.7
	again, _ := c.Get("k")
	assert.Equal(t, 0.1, again.Hotspots[0].X)
}

func TestCache_ExpiresLazily(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10*time.Minute, 100, WithClock(clock.Now))
	c.Set("k", sampleHotspots, Meta{})

	clock.Advance(9*time.Minute + 59*time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_SweepsExpiredOverCapacity(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10*time.Minute, 5, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("old-%d", i), nil, Meta{})
	}
	clock.Advance(11 * time.Minute)
	c.Set("fresh-0", nil, Meta{})

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh-0")
	assert.True(t, ok)
}

func TestCache_EvictsOldestWhenAllLive(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10*time.Minute, 3, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), nil, Meta{})
		clock.Advance(time.Second)
	}

	assert.Equal(t, 3, c.Len())
	for _, k := range []string{"k0", "k1"} {
		_, ok := c.Get(k)
		assert.False(t, ok, k)
	}
	for _, k := range []string{"k2", "k3", "k4"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(time.Minute, 50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%80)
				if _, ok := c.Get(key); !ok {
					c.Set(key, sampleHotspots, Meta{})
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
	s := c.Stats()
	assert.Equal(t, uint64(8*200), s.Hits+s.Misses)
}
