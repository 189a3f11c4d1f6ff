package render

import (
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/hotspot"
	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/screenshot"
)

// Size is an image size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata describes how a render was produced.
type Metadata struct {
	RequestID          string              `json:"request_id"`
	URL                string              `json:"url"`
	Device             string              `json:"device"`
	Viewport           screenshot.Viewport `json:"viewport"`
	Output             Size                `json:"output"`
	Downscaled         bool                `json:"downscaled"`
	Format             string              `json:"format"`
	Mode               string              `json:"mode"`
	PointCount         int                 `json:"point_count"`
	Engine             string              `json:"engine"`
	ScreenshotProvider string              `json:"screenshot_provider"`
	Fallback           bool                `json:"fallback"`
	FallbackReason     string              `json:"fallback_reason,omitempty"`
	Degraded           bool                `json:"degraded"`
	Cached             bool                `json:"cached"`
	Hotspots           []hotspot.Hotspot   `json:"hotspots,omitempty"`
	DroppedCandidates  int                 `json:"dropped_candidates"`
	MaxIntensity       float64             `json:"max_intensity"`
	NonZeroCells       int                 `json:"non_zero_cells"`
	TimingsMs          map[string]float64  `json:"timings_ms"`
}

// Result is an encoded heatmap with its metadata.
type Result struct {
	Image    *imaging.EncodedImage `json:"-"`
	Metadata Metadata              `json:"metadata"`
}

// Detection is the output of a detect-only request.
type Detection struct {
	RequestID          string              `json:"request_id"`
	URL                string              `json:"url"`
	Device             string              `json:"device"`
	Viewport           screenshot.Viewport `json:"viewport"`
	ScreenshotProvider string              `json:"screenshot_provider"`
	Degraded           bool                `json:"degraded"`
	Hotspots           []hotspot.Hotspot   `json:"hotspots"`
	Meta               hotspot.Meta        `json:"meta"`
	TimingsMs          map[string]float64  `json:"timings_ms"`
}

// timings collects per-phase durations.
type timings map[string]float64

func (t timings) add(phase string, d time.Duration) {
	t[phase] += float64(d.Microseconds()) / 1000
}
