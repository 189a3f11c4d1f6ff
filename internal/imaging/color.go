package imaging

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RampName identifies a heat color ramp.
type RampName string

const (
	// RampClassic runs blue, cyan, green, yellow, red.
	RampClassic RampName = "classic"

	// RampSoft is a lower-saturation blue, teal, lime, amber progression.
	RampSoft RampName = "soft"
)

// Ramp is a piecewise-linear color ramp with evenly spaced stops.
//
// Stop i sits at position i/(len(stops)-1). Positions outside [0,1] are
// clamped to the end stops.
type Ramp struct {
	Name  RampName
	stops []colorful.Color
}

var (
	classicRamp = newRamp(RampClassic, "#0000FF", "#00FFFF", "#00FF00", "#FFFF00", "#FF0000")
	softRamp    = newRamp(RampSoft, "#3B6FB6", "#3AAFA9", "#8BC34A", "#F2C14E", "#E8913A")
)

func newRamp(name RampName, hexStops ...string) *Ramp {
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("imaging: bad ramp stop %q: %v", h, err))
		}
		stops[i] = c
	}
	return &Ramp{Name: name, stops: stops}
}

// ParseRamp returns the named ramp. The second result is false for unknown
// names, in which case the classic ramp is returned.
func ParseRamp(name string) (*Ramp, bool) {
	switch RampName(strings.ToLower(strings.TrimSpace(name))) {
	case RampClassic:
		return classicRamp, true
	case RampSoft:
		return softRamp, true
	default:
		return classicRamp, false
	}
}

// At maps a ramp position to an opaque color.
func (r *Ramp) At(t float64) color.NRGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	segments := len(r.stops) - 1
	scaled := t * float64(segments)
	i := int(scaled)
	if i >= segments {
		i = segments - 1
	}
	c := r.stops[i].BlendRgb(r.stops[i+1], scaled-float64(i)).Clamped()

	cr, cg, cb := c.RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: 255}
}

// Top returns the color at position 1.
func (r *Ramp) Top() color.NRGBA {
	return r.At(1)
}

// Stops returns the ramp stops as "#rrggbb" strings.
func (r *Ramp) Stops() []string {
	out := make([]string, len(r.stops))
	for i, s := range r.stops {
		out[i] = s.Hex()
	}
	return out
}
