package heatmap

import (
	"math"
	"strings"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

// Mode selects where the heat comes from.
type Mode string

const (
	// ModeData renders recorded interaction points.
	ModeData Mode = "data"

	// ModeAI renders point clouds expanded from detected hotspots.
	ModeAI Mode = "ai"
)

const (
	DefaultAlpha           = 0.6
	DefaultClipLowPercent  = 0.0
	DefaultClipHighPercent = 99.0
	DefaultKernelRadiusPx  = 40
	DefaultKernelSigmaPx   = 12.0

	minRadiusPx = 1
	maxRadiusPx = 200
	maxSigmaPx  = 100.0
)

// KnobInput is the caller-supplied knob bag. Nil or empty fields take
// defaults.
type KnobInput struct {
	Alpha           *float64 `json:"alpha,omitempty"`
	BlendMode       string   `json:"blendMode,omitempty"`
	Ramp            string   `json:"ramp,omitempty"`
	ClipLowPercent  *float64 `json:"clipLowPercent,omitempty"`
	ClipHighPercent *float64 `json:"clipHighPercent,omitempty"`
	KernelRadiusPx  *float64 `json:"kernelRadiusPx,omitempty"`
	KernelSigmaPx   *float64 `json:"kernelSigmaPx,omitempty"`
}

// Knobs are validated render parameters.
type Knobs struct {
	Alpha           float64
	Blend           BlendMode
	Ramp            *imaging.Ramp
	ClipLowPercent  float64
	ClipHighPercent float64
	KernelRadiusPx  int
	KernelSigmaPx   float64
}

// ResolveKnobs applies defaults and clamps for mode. Unknown blend modes and
// ramps fall back to the defaults; non-finite numbers are treated as absent.
func ResolveKnobs(in KnobInput, mode Mode) Knobs {
	k := Knobs{
		Alpha:           clampFloat(orDefault(in.Alpha, DefaultAlpha), 0, 1),
		ClipLowPercent:  clampFloat(orDefault(in.ClipLowPercent, DefaultClipLowPercent), 0, 100),
		ClipHighPercent: clampFloat(orDefault(in.ClipHighPercent, DefaultClipHighPercent), 0, 100),
		KernelSigmaPx:   clampFloat(orDefault(in.KernelSigmaPx, DefaultKernelSigmaPx), 0, maxSigmaPx),
	}
	if k.ClipLowPercent > k.ClipHighPercent {
		k.ClipLowPercent, k.ClipHighPercent = k.ClipHighPercent, k.ClipLowPercent
	}

	radius := math.Round(orDefault(in.KernelRadiusPx, DefaultKernelRadiusPx))
	k.KernelRadiusPx = int(clampFloat(radius, minRadiusPx, maxRadiusPx))

	k.Blend = defaultBlend(mode)
	switch BlendMode(strings.ToLower(strings.TrimSpace(in.BlendMode))) {
	case BlendNormal:
		k.Blend = BlendNormal
	case BlendAdditive:
		k.Blend = BlendAdditive
	}

	k.Ramp, _ = imaging.ParseRamp(in.Ramp)
	return k
}

// BlurPx is the blur half-width for mode. Hotspot point clouds are already
// clustered, so the AI path blurs half as much.
func (k Knobs) BlurPx(mode Mode) int {
	if mode == ModeAI {
		return int(math.Round(k.KernelSigmaPx / 2))
	}
	return int(math.Round(k.KernelSigmaPx))
}

func defaultBlend(mode Mode) BlendMode {
	if mode == ModeAI {
		return BlendAdditive
	}
	return BlendNormal
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
