package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ErrEmptyRegion is returned when a region does not intersect the image.
var ErrEmptyRegion = errors.New("region is empty")

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Reader reads text from image regions with Tesseract. A Reader holds no
// Tesseract state between calls and is safe for concurrent use.
type Reader struct {
	language       string
	tessdataPrefix string
}

// NewReader creates a Reader. An empty language means English; an empty
// tessdataPrefix uses Tesseract's compiled-in data path.
func NewReader(language, tessdataPrefix string) *Reader {
	if language == "" {
		language = DefaultLanguage
	}
	return &Reader{language: language, tessdataPrefix: tessdataPrefix}
}

// ReadRegion returns the text inside r, with whitespace collapsed to single
// spaces. r is clipped to the image.
func (r *Reader) ReadRegion(img image.Image, region image.Rectangle) (string, error) {
	data, err := encodeRegion(img, region)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return cleanText(text), nil
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// encodeRegion crops region out of img and encodes it as PNG.
func encodeRegion(img image.Image, region image.Rectangle) ([]byte, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, ErrEmptyRegion
	}

	cropped := imaging.Crop(img, region)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	return buf.Bytes(), nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
