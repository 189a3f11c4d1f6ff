package main

import (
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/config"
	"github.com/ironsheep/attention-heatmap-mcp/internal/detection"
	"github.com/ironsheep/attention-heatmap-mcp/internal/hotspot"
	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
	"github.com/ironsheep/attention-heatmap-mcp/internal/ocr"
	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
	"github.com/ironsheep/attention-heatmap-mcp/internal/render"
	"github.com/ironsheep/attention-heatmap-mcp/internal/screenshot"
)

const (
	fetchRetries = 1
	fetchTimeout = 10 * time.Second
)

// app holds the wired components shared by serve and render.
type app struct {
	engine   *render.Engine
	cache    *hotspot.Cache
	chain    *screenshot.Chain
	detector hotspot.Detector
	rec      *metrics.Recorder
	renderer *screenshot.Renderer
	logger   logging.Logger
}

// buildApp wires the engine from cfg. When pinned is non-empty those
// providers replace the configured renderer and hosted services.
func buildApp(cfg *config.Config, logger logging.Logger, pinned ...screenshot.Provider) *app {
	a := &app{rec: metrics.New(), logger: logger}

	providers := pinned
	if len(providers) == 0 {
		if cfg.Screenshot.RendererEnabled {
			a.renderer = screenshot.NewRenderer(cfg.Screenshot.RendererTimeout, logger)
			providers = append(providers, a.renderer)
		}
		for _, h := range cfg.Screenshot.Hosted {
			providers = append(providers, screenshot.NewHosted(h, nil))
		}
	}
	a.chain = screenshot.NewChain(providers, screenshot.ChainOptions{
		Retries:  cfg.Screenshot.Retries,
		Backoff:  cfg.Screenshot.Backoff,
		MinBytes: cfg.Screenshot.MinBytes,
	}, a.rec, logger)

	visual := detection.NewSource(ocr.NewReader(ocr.DefaultLanguage, ""), logger)
	var primary hotspot.Detector
	if cfg.Model.Enabled {
		primary = hotspot.NewModelDetector(cfg.Model, nil, logger)
	}
	a.detector = hotspot.WithFallback(primary, hotspot.NewHeuristic(visual, logger), logger)

	a.cache = hotspot.NewCache(cfg.Cache.TTL, cfg.Cache.Capacity,
		hotspot.WithRecorder(a.rec),
		hotspot.WithCacheLogger(logger))
	service := hotspot.NewService(a.detector, a.cache, a.rec, logger)

	fetcher := page.NewFetcher(page.NewRetryClient(fetchRetries, fetchTimeout, logger))
	a.engine = render.NewEngine(cfg.Render, a.chain, service,
		render.WithFetcher(fetcher),
		render.WithRecorder(a.rec),
		render.WithLogger(logger))

	return a
}

// Close releases the headless browser, if one was started.
func (a *app) Close() {
	if a.renderer == nil {
		return
	}
	if err := a.renderer.Close(); err != nil {
		a.logger.Warn("failed to close renderer", logging.Err(err))
	}
}
