package heatmap

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

// ClipRange is the intensity window selected by percentile clipping.
type ClipRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Position maps an intensity to its ramp position in [0,1].
//
// When Min == Max every positive value maps to 1.
func (c ClipRange) Position(v float64) float64 {
	span := c.Max - c.Min
	if span <= 0 {
		return 1
	}
	t := (v - c.Min) / span
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ClipPercentiles picks the clip window from the strictly positive values of
// buf: Min at the clipLow percentile and Max at the clipHigh percentile.
// Percentiles are in [0,100]. The second result is false when buf has no
// positive values.
func ClipPercentiles(buf *Buffer, clipLow, clipHigh float64) (ClipRange, bool) {
	positive := make([]float64, 0, len(buf.Data)/4)
	for _, v := range buf.Data {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return ClipRange{}, false
	}
	sort.Float64s(positive)

	lo := stat.Quantile(percentToUnit(clipLow), stat.Empirical, positive, nil)
	hi := stat.Quantile(percentToUnit(clipHigh), stat.Empirical, positive, nil)
	if hi < lo {
		lo, hi = hi, lo
	}
	return ClipRange{Min: lo, Max: hi}, true
}

// Colorize maps buf through ramp into an RGBA raster.
//
// Cells <= 0 are fully transparent. Every positive cell is opaque, with its
// color taken from ramp at ClipRange.Position. The clip window is returned
// for diagnostics.
func Colorize(buf *Buffer, ramp *imaging.Ramp, clipLow, clipHigh float64, workers int) (*image.NRGBA, ClipRange, error) {
	out := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))

	clip, ok := ClipPercentiles(buf, clipLow, clipHigh)
	if !ok {
		return out, ClipRange{}, nil
	}

	w := buf.Width
	err := forEachBand(buf.Height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := buf.Data[y*w : (y+1)*w]
			for x, v := range row {
				if v <= 0 {
					continue
				}
				out.SetNRGBA(x, y, ramp.At(clip.Position(v)))
			}
		}
	})
	if err != nil {
		return nil, ClipRange{}, err
	}

	return out, clip, nil
}

// IsTransparent reports whether every pixel of img has zero alpha.
func IsTransparent(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func percentToUnit(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 1
	}
	return p / 100
}
