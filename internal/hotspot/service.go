package hotspot

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
)

// Service runs a detector behind the cache. Concurrent misses on the same
// key share one detector call.
type Service struct {
	detector Detector
	cache    *Cache
	group    singleflight.Group
	rec      *metrics.Recorder
	logger   logging.Logger
}

// NewService wires a detector to a cache. cache may be nil to disable
// memoization.
func NewService(detector Detector, cache *Cache, rec *metrics.Recorder, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{detector: detector, cache: cache, rec: rec, logger: logger.Named("hotspot")}
}

// Cache returns the service's cache, which may be nil.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Detect returns sanitized, de-overlapped hotspots for pc. Cached results
// carry Meta.Cached; the returned slice is always the caller's to modify.
func (s *Service) Detect(ctx context.Context, pc PageContext) (*Result, error) {
	sig := ""
	if signer, ok := s.detector.(Signer); ok {
		sig = signer.PromptSignature()
	}
	key := CacheKey(pc.URL, pc.Device, pc.FullPage, pc.Parity, sig)

	if s.cache != nil {
		if e, ok := s.cache.Get(key); ok {
			meta := e.Meta
			meta.Cached = true
			meta.Duration = 0
			return &Result{Hotspots: e.Hotspots, Meta: meta}, nil
		}
	}

	// The shared call outlives any one caller; detector timeouts bound it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.detect(shared, pc, sig, key)
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}

	res := r.Val.(*Result)
	if r.Shared {
		s.logger.Debug("joined in-flight detection", logging.String("url", pc.URL))
	}
	return &Result{Hotspots: cloneHotspots(res.Hotspots), Meta: res.Meta}, nil
}

func (s *Service) detect(ctx context.Context, pc PageContext, sig, key string) (*Result, error) {
	raw, err := s.detector.Detect(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}

	kept, dropped := Refine(raw.Hotspots, pc.Parity)
	meta := raw.Meta
	meta.Dropped = dropped
	if meta.PromptSignature == "" {
		meta.PromptSignature = sig
	}
	s.rec.Detection(meta.Engine, meta.Fallback)

	s.logger.Info("hotspots detected",
		logging.String("url", pc.URL),
		logging.String("device", pc.Device),
		logging.String("engine", meta.Engine),
		logging.Bool("fallback", meta.Fallback),
		logging.Int("kept", len(kept)),
		logging.Int("dropped", dropped))

	if s.cache != nil && len(kept) > 0 {
		s.cache.Set(key, kept, meta)
	}
	return &Result{Hotspots: kept, Meta: meta}, nil
}
