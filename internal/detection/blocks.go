package detection

import (
	"image"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BlockKind classifies a visual block.
type BlockKind string

const (
	// KindText is a block with fine, mostly horizontal edge structure.
	KindText BlockKind = "text"

	// KindGraphic is a dense block such as a photo, illustration or video.
	KindGraphic BlockKind = "graphic"
)

// Block is a region of a screenshot that looks like page content.
type Block struct {
	Bounds     image.Rectangle `json:"bounds"`
	Kind       BlockKind       `json:"kind"`
	Confidence float64         `json:"confidence"`
	Density    float64         `json:"density"`

	// Color is the mean color of the block as a lowercase hex string.
	Color string `json:"color"`

	// Saturation is the HSV saturation of Color, in [0,1].
	Saturation float64 `json:"saturation"`
}

// Area returns the block's pixel area.
func (b Block) Area() int {
	return b.Bounds.Dx() * b.Bounds.Dy()
}

// BlocksResult contains detected blocks, highest confidence first.
type BlocksResult struct {
	Blocks []Block `json:"blocks"`
	Count  int     `json:"count"`
}

// Window sizes at a 1440px reference width. Wider screenshots scale them up.
var windowSizes = []struct{ w, h int }{
	{100, 30}, // small text
	{150, 40}, // medium text
	{200, 50}, // large text
	{80, 25},  // very small text
}

const (
	referenceWidth = 1440
	edgeThreshold  = 30.0

	textDensityMin    = 0.05
	textDensityMax    = 0.4
	graphicDensityMin = 0.4
	minBlockArea      = 400
)

// FindBlocks scans img for text-like and graphic-like regions.
//
// A sliding window counts edge pixels at several sizes. Windows with medium
// edge density and mostly horizontal structure become text candidates;
// windows denser than that become graphic candidates. Overlapping candidates
// of the same kind are merged into their union until none overlap.
func FindBlocks(img image.Image, minConfidence float64) *BlocksResult {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(img, width, height)
	sums := newIntegral(edges, width, height)

	scale := math.Max(1, float64(width)/referenceWidth)
	var text, graphic []Block

	for _, base := range windowSizes {
		ww := int(float64(base.w) * scale)
		wh := int(float64(base.h) * scale)
		if ww > width || wh > height {
			continue
		}
		stepX := maxInt(1, ww/2)
		stepY := maxInt(1, wh/2)

		for y := 0; y+wh <= height; y += stepY {
			for x := 0; x+ww <= width; x += stepX {
				density := float64(sums.count(x, y, x+ww, y+wh)) / float64(ww*wh)
				r := image.Rect(x, y, x+ww, y+wh)

				switch {
				case density >= textDensityMin && density <= textDensityMax:
					h := calculateHorizontalScore(edges, x, y, ww, wh)
					conf := h * (1.0 - math.Abs(density-0.2)/0.2)
					if conf >= minConfidence {
						text = append(text, Block{Bounds: r, Kind: KindText, Confidence: conf})
					}
				case density > graphicDensityMin:
					conf := math.Min(1, density)
					if conf >= minConfidence {
						graphic = append(graphic, Block{Bounds: r, Kind: KindGraphic, Confidence: conf})
					}
				}
			}
		}
	}

	blocks := append(mergeOverlapping(text), mergeOverlapping(graphic)...)

	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Area() < minBlockArea {
			continue
		}
		b.Density = float64(sums.count(b.Bounds.Min.X, b.Bounds.Min.Y, b.Bounds.Max.X, b.Bounds.Max.Y)) / float64(b.Area())
		mean := meanColor(img, b.Bounds)
		b.Color = mean.Hex()
		_, b.Saturation, _ = mean.Hsv()
		b.Confidence = math.Round(b.Confidence*1000) / 1000
		b.Bounds = b.Bounds.Add(bounds.Min)
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})

	return &BlocksResult{Blocks: out, Count: len(out)}
}

// integral is a summed-area table of edge pixels.
type integral struct {
	w    int
	data []int
}

func newIntegral(edges [][]bool, width, height int) integral {
	s := integral{w: width + 1, data: make([]int, (width+1)*(height+1))}
	for y := 0; y < height; y++ {
		row := 0
		for x := 0; x < width; x++ {
			if edges[y][x] {
				row++
			}
			s.data[(y+1)*s.w+x+1] = s.data[y*s.w+x+1] + row
		}
	}
	return s
}

// count returns the number of edge pixels in [x0,x1) x [y0,y1).
func (s integral) count(x0, y0, x1, y1 int) int {
	return s.data[y1*s.w+x1] - s.data[y0*s.w+x1] - s.data[y1*s.w+x0] + s.data[y0*s.w+x0]
}

// detectEdges performs simple gradient-based edge detection.
//
// Pixels where |current - neighbor| > 30 (in grayscale) against the right or
// lower neighbor are edges. Border pixels are never edges.
func detectEdges(img image.Image, width, height int) [][]bool {
	bounds := img.Bounds()
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				continue
			}

			c := grayValue(img, x+bounds.Min.X, y+bounds.Min.Y)
			cx := grayValue(img, x+1+bounds.Min.X, y+bounds.Min.Y)
			cy := grayValue(img, x+bounds.Min.X, y+1+bounds.Min.Y)

			dx := math.Abs(float64(c) - float64(cx))
			dy := math.Abs(float64(c) - float64(cy))

			if dx > edgeThreshold || dy > edgeThreshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 luminance weights.
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114)
}

// meanColor averages the pixels of r, which is relative to the image origin.
func meanColor(img image.Image, r image.Rectangle) colorful.Color {
	bounds := img.Bounds()
	var sr, sg, sb float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			sr += float64(cr) / 65535
			sg += float64(cg) / 65535
			sb += float64(cb) / 65535
			n++
		}
	}
	if n == 0 {
		return colorful.Color{}
	}
	return colorful.Color{R: sr / float64(n), G: sg / float64(n), B: sb / float64(n)}
}

// calculateHorizontalScore is the share of horizontal edge runs among all
// edge runs in the window. Text scores high.
func calculateHorizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlapping replaces overlapping blocks by their union, keeping the
// higher confidence, until no two blocks overlap.
func mergeOverlapping(blocks []Block) []Block {
	merged := blocks
	for {
		next := make([]Block, 0, len(merged))
		changed := false
		for _, b := range merged {
			found := false
			for i := range next {
				if b.Bounds.Overlaps(next[i].Bounds) {
					next[i].Bounds = next[i].Bounds.Union(b.Bounds)
					next[i].Confidence = math.Max(b.Confidence, next[i].Confidence)
					found = true
					changed = true
					break
				}
			}
			if !found {
				next = append(next, b)
			}
		}
		merged = next
		if !changed {
			return merged
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
