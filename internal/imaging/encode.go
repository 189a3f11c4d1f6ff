package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage contains encoded image data ready for transport.
type EncodedImage struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// Base64 returns the standard base64 encoding of Data.
func (e *EncodedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(e.Data)
}

// Encode writes img as "png" or "jpeg". JPEG output uses the given quality,
// or 90 when quality is outside 1..100.
func Encode(img image.Image, format string, quality int) (*EncodedImage, error) {
	var buf bytes.Buffer
	mime := ""

	switch format {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
		mime = "image/png"
	case "jpeg", "jpg":
		if quality < 1 || quality > 100 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
		mime = "image/jpeg"
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return &EncodedImage{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Data:     buf.Bytes(),
		MimeType: mime,
	}, nil
}

// Shrink downsizes img so its width is at most maxWidth, keeping the aspect
// ratio. Images already narrow enough are returned unchanged.
func Shrink(img image.Image, maxWidth int) image.Image {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// Scale resizes img by factor. Both output dimensions are at least 1 pixel.
func Scale(img image.Image, factor float64) *image.NRGBA {
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// ScaleTo resizes img to exactly width x height.
func ScaleTo(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}
