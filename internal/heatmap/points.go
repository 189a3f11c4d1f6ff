package heatmap

import (
	"math"
)

// PointKind distinguishes recorded interaction types.
type PointKind string

const (
	KindClick    PointKind = "click"
	KindMovement PointKind = "movement"
)

// NormalizedPoint is an interaction point in [0,1] page coordinates.
//
// ScrollY, when present, is the page scroll position in [0,1] at the time of
// the interaction and Y is relative to the viewport rather than the page.
type NormalizedPoint struct {
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	ScrollY *float64  `json:"scrollY,omitempty"`
	Kind    PointKind `json:"kind,omitempty"`
}

// PixelPoint is a point in image pixels carrying its deposit weight.
type PixelPoint struct {
	X      int
	Y      int
	Weight float64
}

// ToPixels maps normalized points onto a width x height image.
//
// xPx = round(x*(width-1)) and yPx = round(y*(height-1)). Points carrying a
// scroll offset are placed at scrollY*max(0, height-viewportHeight) +
// y*viewportHeight instead. viewportHeight <= 0 means the image is a single
// viewport. Non-finite coordinates are treated as 0 and every coordinate is
// clamped into the image. Each returned point has weight 1.
func ToPixels(points []NormalizedPoint, width, height, viewportHeight int) []PixelPoint {
	if width <= 0 || height <= 0 {
		return nil
	}
	if viewportHeight <= 0 || viewportHeight > height {
		viewportHeight = height
	}
	scrollable := float64(height - viewportHeight)

	out := make([]PixelPoint, 0, len(points))
	for _, p := range points {
		x := unit(p.X)
		y := unit(p.Y)

		px := int(math.Round(x * float64(width-1)))
		var py int
		if p.ScrollY != nil {
			absY := unit(*p.ScrollY)*scrollable + y*float64(viewportHeight)
			py = int(math.Round(absY))
		} else {
			py = int(math.Round(y * float64(height-1)))
		}

		out = append(out, PixelPoint{
			X:      clampInt(px, 0, width-1),
			Y:      clampInt(py, 0, height-1),
			Weight: 1,
		})
	}
	return out
}

// unit replaces non-finite values with 0 and clamps into [0,1].
func unit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
