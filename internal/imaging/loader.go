package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	_ "golang.org/x/image/webp" // Hosted providers may answer with webp
)

// ErrUndecodable is returned when screenshot bytes are not a supported image.
var ErrUndecodable = errors.New("image bytes could not be decoded")

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// Pixels returns Width*Height.
func (d DimensionsResult) Pixels() int {
	return d.Width * d.Height
}

// Decode decodes screenshot bytes into an image.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the format.
//   - string: The detected format ("png", "jpeg", "gif" or "webp").
//   - error: Wraps ErrUndecodable when the bytes are empty, truncated or of an
//     unknown format, or when the decoded image has no pixels.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrUndecodable)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", fmt.Errorf("%w: zero-sized image %dx%d", ErrUndecodable, b.Dx(), b.Dy())
	}

	return img, format, nil
}

// Dimensions reads only the image header to report its size.
//
// It is used to extract the real screenshot size before any pixel work, since
// providers do not always honor the requested viewport.
func Dimensions(data []byte) (*DimensionsResult, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image %dx%d", ErrUndecodable, cfg.Width, cfg.Height)
	}
	return &DimensionsResult{Width: cfg.Width, Height: cfg.Height}, nil
}

// LoadFile reads and decodes an image from disk.
func LoadFile(path string) (image.Image, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, data, nil
}
