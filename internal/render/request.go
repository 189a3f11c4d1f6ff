package render

import (
	"math"
	"net/url"
	"strings"

	"github.com/ironsheep/attention-heatmap-mcp/internal/heatmap"
	"github.com/ironsheep/attention-heatmap-mcp/internal/screenshot"
)

// MaxPoints bounds the interaction points accepted per request.
const MaxPoints = 5000

// Request is one heatmap render.
type Request struct {
	URL    string                    `json:"url"`
	Device string                    `json:"device"`
	Mode   string                    `json:"mode"`
	Points []heatmap.NormalizedPoint `json:"points,omitempty"`
	Knobs  heatmap.KnobInput         `json:"knobs"`

	// Parity drops low-confidence hotspots before de-overlap.
	Parity bool `json:"parity"`

	FullPage     bool `json:"full_page"`
	ShowHotspots bool `json:"show_hotspots"`
}

// DetectRequest is a hotspot detection without rendering.
type DetectRequest struct {
	URL      string `json:"url"`
	Device   string `json:"device"`
	Parity   bool   `json:"parity"`
	FullPage bool   `json:"full_page"`
}

// validated is a Request after checks, with parsed enums.
type validated struct {
	Request
	device screenshot.Device
	mode   heatmap.Mode
}

// validate rejects bad input before any work is done. An empty mode means
// data when points are given and ai otherwise.
func validate(req Request) (*validated, error) {
	if err := checkURL(req.URL); err != nil {
		return nil, err
	}
	device, err := parseDevice(req.Device)
	if err != nil {
		return nil, err
	}

	var mode heatmap.Mode
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "":
		mode = heatmap.ModeAI
		if len(req.Points) > 0 {
			mode = heatmap.ModeData
		}
	case string(heatmap.ModeData):
		mode = heatmap.ModeData
	case string(heatmap.ModeAI):
		mode = heatmap.ModeAI
	default:
		return nil, invalid("mode must be data or ai, got %q", req.Mode)
	}

	if len(req.Points) > MaxPoints {
		return nil, invalid("too many points: %d (max %d)", len(req.Points), MaxPoints)
	}
	for i, p := range req.Points {
		if !inUnit(p.X) || !inUnit(p.Y) {
			return nil, invalid("point %d: x and y must be finite and within [0,1]", i)
		}
		if p.ScrollY != nil && !inUnit(*p.ScrollY) {
			return nil, invalid("point %d: scrollY must be finite and within [0,1]", i)
		}
		switch p.Kind {
		case "", heatmap.KindClick, heatmap.KindMovement:
		default:
			return nil, invalid("point %d: kind must be click or movement, got %q", i, p.Kind)
		}
	}

	return &validated{Request: req, device: device, mode: mode}, nil
}

func validateDetect(req DetectRequest) (screenshot.Device, error) {
	if err := checkURL(req.URL); err != nil {
		return "", err
	}
	return parseDevice(req.Device)
}

// checkURL accepts absolute http and https URLs with a host.
func checkURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("url is not valid: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return invalid("url has no host")
	}
	return nil
}

// parseDevice defaults an empty device to desktop.
func parseDevice(s string) (screenshot.Device, error) {
	if strings.TrimSpace(s) == "" {
		return screenshot.DeviceDesktop, nil
	}
	d, err := screenshot.ParseDevice(s)
	if err != nil {
		return "", invalid("%v", err)
	}
	return d, nil
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 1
}
