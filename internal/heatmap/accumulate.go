package heatmap

import (
	"fmt"
	"math"
)

// Accumulate deposits every point into a new width x height buffer.
//
// Each point adds intensityPerPoint * weight * max(0, 1 - d/radiusPx) to every
// cell within Euclidean distance radiusPx of its center. When limit > 0 each
// cell's running total is capped at limit. Negative or non-finite weights and
// intensities deposit nothing, so every cell stays >= 0.
//
// Summation is commutative; point order does not change the result beyond
// floating point rounding.
func Accumulate(width, height int, points []PixelPoint, radiusPx int, intensityPerPoint, limit float64) (*Buffer, Stats, error) {
	buf, err := NewBuffer(width, height)
	if err != nil {
		return nil, Stats{}, err
	}
	if radiusPx < 1 {
		return nil, Stats{}, fmt.Errorf("radius must be >= 1, got %d", radiusPx)
	}
	if !(intensityPerPoint > 0) || math.IsInf(intensityPerPoint, 0) {
		return buf, Stats{}, nil
	}

	r := float64(radiusPx)
	r2 := radiusPx * radiusPx

	for _, p := range points {
		w := p.Weight
		if !(w > 0) || math.IsInf(w, 0) {
			continue
		}
		amount := intensityPerPoint * w

		y0 := maxInt(0, p.Y-radiusPx)
		y1 := minInt(height-1, p.Y+radiusPx)
		x0 := maxInt(0, p.X-radiusPx)
		x1 := minInt(width-1, p.X+radiusPx)

		for y := y0; y <= y1; y++ {
			dy := y - p.Y
			row := buf.Data[y*width : (y+1)*width]
			for x := x0; x <= x1; x++ {
				dx := x - p.X
				d2 := dx*dx + dy*dy
				if d2 > r2 {
					continue
				}
				falloff := 1 - math.Sqrt(float64(d2))/r
				if falloff <= 0 {
					continue
				}
				v := row[x] + amount*falloff
				if limit > 0 && v > limit {
					v = limit
				}
				row[x] = v
			}
		}
	}

	return buf, buf.Stats(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
