package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()
	r.ScreenshotAttempt("renderer", OutcomeError)
	r.ScreenshotAttempt("renderer", OutcomeSuccess)
	r.ScreenshotAttempt("renderer", OutcomeSuccess)
	r.Detection("heuristic", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheMisses))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.shotAttempts.WithLabelValues("renderer", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.shotAttempts.WithLabelValues("renderer", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.detections.WithLabelValues("heuristic", "true")))
}

func TestRecorder_ObservePhase(t *testing.T) {
	r := New()
	r.ObservePhase("blur", 20*time.Millisecond)
	r.ObservePhase("blur", 30*time.Millisecond)
	r.ObservePhase("colorize", time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(r.phase))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.CacheMiss()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "heatmap_cache_misses_total"))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.CacheHit()
		r.CacheMiss()
		r.ObservePhase("accumulate", time.Second)
		r.ScreenshotAttempt("x", OutcomeSuccess)
		r.Detection("x", false)
	})
	assert.Nil(t, r.Registry())
	assert.NotNil(t, r.Handler())
}
