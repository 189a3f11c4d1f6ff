package detection

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
)

// TextReader reads the text inside a region of an image.
type TextReader interface {
	ReadRegion(img image.Image, r image.Rectangle) (string, error)
}

const (
	defaultMinConfidence = 0.3
	defaultMaxBlocks     = 24
	maxOCRBlocks         = 12

	// Blocks this saturated and compact read as buttons.
	buttonSaturation = 0.35
	buttonMaxWidth   = 420
	buttonMaxHeight  = 120
)

// Source turns screenshot blocks into page elements for scoring when no DOM
// is available.
type Source struct {
	reader        TextReader
	logger        logging.Logger
	minConfidence float64
	maxBlocks     int
}

// NewSource creates a Source. reader may be nil, in which case blocks carry
// no text.
func NewSource(reader TextReader, logger logging.Logger) *Source {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Source{
		reader:        reader,
		logger:        logger.Named("visual"),
		minConfidence: defaultMinConfidence,
		maxBlocks:     defaultMaxBlocks,
	}
}

// Elements finds blocks in img and returns them as elements in image pixel
// coordinates. Text is read for the most confident text blocks when a
// reader is configured; a failed read leaves the block without text.
func (s *Source) Elements(ctx context.Context, img image.Image) ([]page.Element, error) {
	res := FindBlocks(img, s.minConfidence)
	blocks := res.Blocks
	if len(blocks) > s.maxBlocks {
		blocks = blocks[:s.maxBlocks]
	}

	scale := math.Max(1, float64(img.Bounds().Dx())/referenceWidth)
	origin := img.Bounds().Min
	out := make([]page.Element, 0, len(blocks))
	read := 0

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		el := elementFor(b, origin, scale)
		if b.Kind == KindText && s.reader != nil && read < maxOCRBlocks {
			read++
			text, err := s.reader.ReadRegion(img, b.Bounds)
			if err != nil {
				s.logger.Debug("text read failed", logging.Err(err))
			} else {
				el.Text = text
			}
		}

		out = append(out, el)
	}

	s.logger.Debug("visual blocks extracted",
		logging.Int("blocks", res.Count),
		logging.Int("elements", len(out)),
		logging.Int("ocr_reads", read))
	return out, nil
}

// elementFor maps a block to an element relative to origin. Graphic blocks
// become images; compact saturated text blocks become buttons.
func elementFor(b Block, origin image.Point, scale float64) page.Element {
	r := b.Bounds
	el := page.Element{
		Tag:    "block",
		X:      float64(r.Min.X - origin.X),
		Y:      float64(r.Min.Y - origin.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}

	switch b.Kind {
	case KindGraphic:
		el.Tag = "img"
	case KindText:
		if r.Dy() <= int(80*scale) {
			el.FontSize = float64(r.Dy()) * 0.6
		}
		if b.Saturation >= buttonSaturation &&
			r.Dx() <= int(buttonMaxWidth*scale) && r.Dy() <= int(buttonMaxHeight*scale) {
			el.Role = "button"
		}
	}
	return el
}
