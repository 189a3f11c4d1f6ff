// Package metrics exposes the heatmap engine's prometheus instruments.
//
// A Recorder owns its own registry; nothing is registered globally. All
// methods are safe on a nil *Recorder, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heatmap"

// Attempt outcomes for ScreenshotAttempt.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTooSmall = "too_small"
)

// Recorder holds the engine's counters and histograms.
type Recorder struct {
	registry *prometheus.Registry

	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	phase        *prometheus.HistogramVec
	shotAttempts *prometheus.CounterVec
	detections   *prometheus.CounterVec
}

// New creates a Recorder registered on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Recorder registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: reg,
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Hotspot cache lookups that returned a live entry.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Hotspot cache lookups that found nothing or an expired entry.",
		}),
		phase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each render phase.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"phase"}),
		shotAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshot_attempts_total",
			Help:      "Screenshot provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Hotspot detections by engine and whether a fallback was used.",
		}, []string{"engine", "fallback"}),
	}

	reg.MustRegister(r.cacheHits, r.cacheMisses, r.phase, r.shotAttempts, r.detections)
	return r
}

// Registry returns the registry the instruments live on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Recorder) CacheHit() {
	if r != nil {
		r.cacheHits.Inc()
	}
}

func (r *Recorder) CacheMiss() {
	if r != nil {
		r.cacheMisses.Inc()
	}
}

// ObservePhase records how long a render phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	if r != nil {
		r.phase.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// ScreenshotAttempt counts one provider attempt.
func (r *Recorder) ScreenshotAttempt(provider, outcome string) {
	if r != nil {
		r.shotAttempts.WithLabelValues(provider, outcome).Inc()
	}
}

// Detection counts one completed hotspot detection.
func (r *Recorder) Detection(engine string, fallback bool) {
	if r != nil {
		r.detections.WithLabelValues(engine, strconv.FormatBool(fallback)).Inc()
	}
}
