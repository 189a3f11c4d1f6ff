package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blend"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

// BlendMode selects how the colored raster is combined with the screenshot.
type BlendMode string

const (
	// BlendNormal is standard alpha-over.
	BlendNormal BlendMode = "normal"

	// BlendAdditive adds overlay values to the screenshot, saturating, so
	// overlapping heat reads brighter.
	BlendAdditive BlendMode = "additive"
)

func (m BlendMode) String() string {
	return string(m)
}

// CompositeResult is the final image with its effective geometry.
type CompositeResult struct {
	Image      *image.RGBA
	Width      int
	Height     int
	Downscaled bool

	// Scale is the factor applied to both inputs; 1 when not downscaled.
	Scale float64
}

// Composite draws overlay over base with the given alpha and blend mode.
//
// overlay must have the same dimensions as base. When base has more than
// maxPixels pixels both images are proportionally downscaled first so the
// output stays within the bound; the output is never cropped. maxPixels <= 0
// disables the guard.
func Composite(base image.Image, overlay *image.NRGBA, alpha float64, mode BlendMode, maxPixels int) (*CompositeResult, error) {
	bb := base.Bounds()
	ob := overlay.Bounds()
	if bb.Dx() != ob.Dx() || bb.Dy() != ob.Dy() {
		return nil, fmt.Errorf("overlay %dx%d does not match screenshot %dx%d",
			ob.Dx(), ob.Dy(), bb.Dx(), bb.Dy())
	}
	if bb.Empty() {
		return nil, fmt.Errorf("empty screenshot")
	}
	alpha = unit(alpha)

	var bg image.Image = base
	fg := overlay
	scale := 1.0
	downscaled := false

	if pixels := bb.Dx() * bb.Dy(); maxPixels > 0 && pixels > maxPixels {
		scale = math.Sqrt(float64(maxPixels) / float64(pixels))
		scaledBase := imaging.Scale(base, scale)
		sb := scaledBase.Bounds()
		bg = scaledBase
		fg = imaging.ScaleTo(overlay, sb.Dx(), sb.Dy())
		downscaled = true
	}

	var out *image.RGBA
	switch mode {
	case BlendAdditive:
		out = blend.Add(bg, withAlpha(fg, alpha))
	default:
		out = alphaOver(bg, fg, alpha)
	}

	return &CompositeResult{
		Image:      out,
		Width:      out.Bounds().Dx(),
		Height:     out.Bounds().Dy(),
		Downscaled: downscaled,
		Scale:      scale,
	}, nil
}

// alphaOver copies bg and draws fg over it through a uniform alpha mask.
func alphaOver(bg image.Image, fg *image.NRGBA, alpha float64) *image.RGBA {
	b := bg.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), bg, b.Min, draw.Src)

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	draw.DrawMask(out, out.Bounds(), fg, fg.Bounds().Min, mask, image.Point{}, draw.Over)
	return out
}

// withAlpha returns a copy of fg whose visible pixels carry alpha*255.
func withAlpha(fg *image.NRGBA, alpha float64) *image.NRGBA {
	a := uint8(math.Round(alpha * 255))
	out := image.NewNRGBA(fg.Bounds())
	copy(out.Pix, fg.Pix)
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0 {
			out.Pix[i] = uint8(uint16(out.Pix[i]) * uint16(a) / 255)
		}
	}
	return out
}
