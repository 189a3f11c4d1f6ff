package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/ironsheep/attention-heatmap-mcp/internal/config"
	"github.com/ironsheep/attention-heatmap-mcp/internal/heatmap"
	"github.com/ironsheep/attention-heatmap-mcp/internal/hotspot"
	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
	"github.com/ironsheep/attention-heatmap-mcp/internal/screenshot"
)

// EngineData is the engine id of renders from recorded points.
const EngineData = "data"

const (
	intensityPerPoint = 1.0
	outlineThickness  = 2
	jpegQuality       = 90
)

// Screenshotter acquires a screenshot, degrading to a placeholder when every
// provider fails. *screenshot.Chain implements it.
type Screenshotter interface {
	AcquireOrPlaceholder(ctx context.Context, req screenshot.Request) (*screenshot.Capture, error)
}

// HotspotDetector returns sanitized hotspots. *hotspot.Service implements it.
type HotspotDetector interface {
	Detect(ctx context.Context, pc hotspot.PageContext) (*hotspot.Result, error)
}

// HTMLFetcher downloads page HTML. *page.Fetcher implements it.
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Engine runs renders. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	cfg      config.RenderConfig
	shots    Screenshotter
	hotspots HotspotDetector
	fetcher  HTMLFetcher
	rec      *metrics.Recorder
	logger   logging.Logger
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetcher sets the HTML fetcher used when a screenshot provider returns
// no page content.
func WithFetcher(f HTMLFetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(e *Engine) { e.rec = rec }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDFunc replaces the request id generator.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an Engine.
func NewEngine(cfg config.RenderConfig, shots Screenshotter, hotspots HotspotDetector, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		shots:    shots,
		hotspots: hotspots,
		logger:   logging.NewNopLogger(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.Workers < 1 {
		e.cfg.Workers = 1
	}
	if e.cfg.OutputFormat == "" {
		e.cfg.OutputFormat = config.DefaultOutputFormat
	}
	e.logger = e.logger.Named("render")
	return e
}

// Render produces a heatmap for req.
//
// Screenshot and detection failures degrade: a placeholder screenshot and
// heuristic hotspots are flagged in the metadata. Invalid input, undecodable
// screenshots and raster failures return an *Error.
func (e *Engine) Render(ctx context.Context, req Request) (*Result, error) {
	v, err := validate(req)
	if err != nil {
		return nil, err
	}

	t := timings{}
	meta := Metadata{
		RequestID: e.newID(),
		URL:       v.URL,
		Device:    string(v.device),
		Viewport:  v.device.Viewport(),
		Mode:      string(v.mode),
		Format:    e.cfg.OutputFormat,
		TimingsMs: t,
	}
	log := e.logger.With(logging.String("request_id", meta.RequestID), logging.String("url", v.URL))

	shot, err := e.acquire(ctx, t, v.URL, v.device, v.FullPage, log)
	if err != nil {
		return nil, err
	}
	meta.ScreenshotProvider = shot.capture.Provider
	meta.Degraded = shot.capture.Degraded

	knobs := heatmap.ResolveKnobs(v.Knobs, v.mode)
	bounds := shot.img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var points []heatmap.PixelPoint
	var spots []hotspot.Hotspot

	if v.mode == heatmap.ModeAI {
		res, err := e.detect(ctx, t, shot, v.URL, v.device, v.Parity, v.FullPage, log)
		if err != nil {
			return nil, err
		}
		spots = res.Hotspots
		meta.Engine = res.Meta.Engine
		meta.Fallback = res.Meta.Fallback
		meta.FallbackReason = res.Meta.FallbackReason
		meta.Cached = res.Meta.Cached
		meta.Hotspots = res.Hotspots
		meta.DroppedCandidates = res.Meta.Dropped

		start := time.Now()
		points = heatmap.ExpandRegions(regionsOf(spots), w, h, seedFor(v.URL, v.device))
		e.observe(t, PhasePoints, start)
	} else {
		meta.Engine = EngineData

		start := time.Now()
		points = heatmap.ToPixels(v.Points, w, h, shot.viewportPx)
		e.observe(t, PhasePoints, start)
	}
	meta.PointCount = len(points)

	var (
		buf     *heatmap.Buffer
		stats   heatmap.Stats
		overlay *image.NRGBA
		comp    *heatmap.CompositeResult
	)

	if err := e.raster(t, PhaseAccumulate, func() (err error) {
		buf, stats, err = heatmap.Accumulate(w, h, points, knobs.KernelRadiusPx, intensityPerPoint, 0)
		return err
	}); err != nil {
		return nil, err
	}
	meta.MaxIntensity = stats.MaxValue
	meta.NonZeroCells = stats.NonZeroCount

	if err := e.raster(t, PhaseBlur, func() (err error) {
		buf, err = heatmap.Blur(buf, knobs.BlurPx(v.mode), e.cfg.Workers)
		return err
	}); err != nil {
		return nil, err
	}

	if err := e.raster(t, PhaseColorize, func() (err error) {
		overlay, _, err = heatmap.Colorize(buf, knobs.Ramp, knobs.ClipLowPercent, knobs.ClipHighPercent, e.cfg.Workers)
		return err
	}); err != nil {
		return nil, err
	}

	if err := e.raster(t, PhaseComposite, func() (err error) {
		comp, err = heatmap.Composite(shot.img, overlay, knobs.Alpha, knobs.Blend, e.cfg.MaxPixels)
		return err
	}); err != nil {
		return nil, err
	}
	meta.Output = Size{Width: comp.Width, Height: comp.Height}
	meta.Downscaled = comp.Downscaled

	var final image.Image = comp.Image
	if v.ShowHotspots && len(spots) > 0 {
		if err := e.raster(t, PhaseOutline, func() error {
			final = imaging.DrawOutlines(comp.Image, outlineRects(spots, comp.Width, comp.Height), knobs.Ramp.Top(), outlineThickness)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	var enc *imaging.EncodedImage
	if err := e.raster(t, PhaseEncode, func() (err error) {
		enc, err = imaging.Encode(final, e.cfg.OutputFormat, jpegQuality)
		return err
	}); err != nil {
		return nil, err
	}

	log.Info("heatmap rendered",
		logging.String("mode", meta.Mode),
		logging.String("engine", meta.Engine),
		logging.String("provider", meta.ScreenshotProvider),
		logging.Bool("degraded", meta.Degraded),
		logging.Bool("fallback", meta.Fallback),
		logging.Int("points", meta.PointCount))

	return &Result{Image: enc, Metadata: meta}, nil
}

// Detect acquires a screenshot and returns sanitized hotspots without
// rendering.
func (e *Engine) Detect(ctx context.Context, req DetectRequest) (*Detection, error) {
	device, err := validateDetect(req)
	if err != nil {
		return nil, err
	}

	t := timings{}
	id := e.newID()
	log := e.logger.With(logging.String("request_id", id), logging.String("url", req.URL))

	shot, err := e.acquire(ctx, t, req.URL, device, req.FullPage, log)
	if err != nil {
		return nil, err
	}
	res, err := e.detect(ctx, t, shot, req.URL, device, req.Parity, req.FullPage, log)
	if err != nil {
		return nil, err
	}

	return &Detection{
		RequestID:          id,
		URL:                req.URL,
		Device:             string(device),
		Viewport:           device.Viewport(),
		ScreenshotProvider: shot.capture.Provider,
		Degraded:           shot.capture.Degraded,
		Hotspots:           res.Hotspots,
		Meta:               res.Meta,
		TimingsMs:          t,
	}, nil
}

// captured is a decoded screenshot with its geometry.
type captured struct {
	capture *screenshot.Capture
	img     image.Image

	// viewportPx is the viewport height in image pixels.
	viewportPx int

	// pageHeight is the CSS height the image covers.
	pageHeight int
}

func (e *Engine) acquire(ctx context.Context, t timings, url string, device screenshot.Device, fullPage bool, log logging.Logger) (*captured, error) {
	start := time.Now()
	capture, err := e.shots.AcquireOrPlaceholder(ctx, screenshot.Request{URL: url, Device: device, FullPage: fullPage})
	e.observe(t, PhaseScreenshot, start)
	if err != nil {
		log.Warn("screenshot providers exhausted, using placeholder", logging.Err(err))
	}
	if capture == nil {
		return nil, &Error{Kind: KindProviderExhausted, Phase: PhaseScreenshot, Message: "no screenshot available", Cause: err}
	}

	start = time.Now()
	img, _, err := imaging.Decode(capture.Image)
	e.observe(t, PhaseDecode, start)
	if err != nil {
		return nil, &Error{Kind: KindDimensionExtractionFailed, Phase: PhaseDecode, Message: "screenshot could not be decoded", Cause: err}
	}

	vp := device.Viewport()
	b := img.Bounds()
	scale := float64(b.Dx()) / float64(vp.Width)

	viewportPx := int(math.Round(float64(vp.Height) * scale))
	if viewportPx <= 0 || viewportPx > b.Dy() {
		viewportPx = b.Dy()
	}
	pageHeight := capture.PageHeight
	if pageHeight <= 0 {
		pageHeight = int(math.Round(float64(b.Dy()) / scale))
	}

	return &captured{capture: capture, img: img, viewportPx: viewportPx, pageHeight: pageHeight}, nil
}

func (e *Engine) detect(ctx context.Context, t timings, shot *captured, url string, device screenshot.Device, parity, fullPage bool, log logging.Logger) (*hotspot.Result, error) {
	start := time.Now()
	summary := e.summarize(ctx, shot.capture, url, log)
	e.observe(t, PhaseSummary, start)

	vp := device.Viewport()
	start = time.Now()
	res, err := e.hotspots.Detect(ctx, hotspot.PageContext{
		URL:            url,
		Device:         string(device),
		Parity:         parity,
		FullPage:       fullPage,
		ViewportWidth:  vp.Width,
		ViewportHeight: vp.Height,
		PageHeight:     shot.pageHeight,
		Screenshot:     shot.img,
		Elements:       shot.capture.Elements,
		Summary:        summary,
	})
	e.observe(t, PhaseDetect, start)
	if err != nil {
		return nil, &Error{Kind: KindDetectionFailed, Phase: PhaseDetect, Message: "no detector produced hotspots", Cause: err}
	}
	return res, nil
}

// summarize builds the page summary from the captured HTML, fetching it when
// the provider returned none. Failures only cost the summary.
func (e *Engine) summarize(ctx context.Context, capture *screenshot.Capture, url string, log logging.Logger) *page.Summary {
	html := capture.HTML
	if html == "" && e.fetcher != nil {
		fetched, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			log.Debug("html fetch failed", logging.Err(err))
			return nil
		}
		html = fetched
	}
	if html == "" {
		return nil
	}

	s, err := page.Summarize(html)
	if err != nil {
		log.Debug("html summary failed", logging.Err(err))
		return nil
	}
	return s
}

// raster runs one raster phase, converting errors and panics into a
// RasterFailure tagged with the phase.
func (e *Engine) raster(t timings, phase string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = rasterError(phase, fmt.Errorf("panic: %v", r))
		}
		e.observe(t, phase, start)
		if err != nil {
			e.logger.Error("raster phase failed", logging.String("phase", phase), logging.Err(err))
		}
	}()

	if ferr := fn(); ferr != nil {
		return rasterError(phase, ferr)
	}
	return nil
}

func (e *Engine) observe(t timings, phase string, start time.Time) {
	d := time.Since(start)
	t.add(phase, d)
	e.rec.ObservePhase(phase, d)
}

// seedFor derives the point-cloud seed, so the same page renders the same.
func seedFor(url string, device screenshot.Device) int64 {
	return int64(xxhash.Sum64String(url + "|" + string(device)))
}

func regionsOf(spots []hotspot.Hotspot) []heatmap.Region {
	out := make([]heatmap.Region, len(spots))
	for i, s := range spots {
		out[i] = heatmap.Region{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Confidence: s.Confidence}
	}
	return out
}

func outlineRects(spots []hotspot.Hotspot, width, height int) []image.Rectangle {
	out := make([]image.Rectangle, len(spots))
	for i, s := range spots {
		out[i] = image.Rect(
			int(math.Round(s.X*float64(width))),
			int(math.Round(s.Y*float64(height))),
			int(math.Round((s.X+s.Width)*float64(width))),
			int(math.Round((s.Y+s.Height)*float64(height))),
		)
	}
	return out
}
