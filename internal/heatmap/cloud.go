package heatmap

import (
	"math"
	"math/rand"
)

const (
	cloudDensity    = 6000.0
	cloudMinSamples = 40
	cloudMaxSamples = 2000

	// cloudSpread is the Gaussian sigma of the center bias, in half-extents.
	cloudSpread = 0.35
	cloudFloor  = 0.35
)

// Region is a normalized rectangle with a confidence in [0,1].
type Region struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Confidence float64
}

// ExpandRegions turns each region into a dense weighted point cloud.
//
// A region covering areaFraction of the image gets about
// clamp(round(areaFraction*6000), 40, 2000) samples laid out on a grid
// matching its aspect ratio, each jittered uniformly within its grid cell.
// Sample weight is confidence * (0.35 + 0.65*exp(-(nx²+ny²)/(2*0.35²))) where
// (nx, ny) in [-1,1] is the offset from the region center, so heat
// concentrates toward the middle. The same seed yields the same cloud.
func ExpandRegions(regions []Region, width, height int, seed int64) []PixelPoint {
	if width <= 0 || height <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))

	var out []PixelPoint
	for _, r := range regions {
		if !(r.Width > 0) || !(r.Height > 0) || !(r.Confidence > 0) {
			continue
		}

		wPx := r.Width * float64(width)
		hPx := r.Height * float64(height)
		n := int(math.Round(r.Width * r.Height * cloudDensity))
		n = clampInt(n, cloudMinSamples, cloudMaxSamples)

		cols := int(math.Round(math.Sqrt(float64(n) * wPx / math.Max(hPx, 1e-9))))
		cols = clampInt(cols, 1, n)
		rows := maxInt(1, n/cols)

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				fx := (float64(col) + rng.Float64()) / float64(cols)
				fy := (float64(row) + rng.Float64()) / float64(rows)

				nx := fx*2 - 1
				ny := fy*2 - 1
				bias := math.Exp(-(nx*nx + ny*ny) / (2 * cloudSpread * cloudSpread))
				weight := r.Confidence * (cloudFloor + (1-cloudFloor)*bias)

				x := unit(r.X + fx*r.Width)
				y := unit(r.Y + fy*r.Height)
				out = append(out, PixelPoint{
					X:      clampInt(int(math.Round(x*float64(width-1))), 0, width-1),
					Y:      clampInt(int(math.Round(y*float64(height-1))), 0, height-1),
					Weight: weight,
				})
			}
		}
	}
	return out
}
