package hotspot

import (
	"context"
	"errors"
	"image"
	"strings"
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
)

// Category labels what a hotspot shows.
type Category string

const (
	CategoryHeadline Category = "headline"
	CategoryCTA      Category = "cta"
	CategoryLogo     Category = "logo"
	CategoryHero     Category = "hero"
	CategoryProduct  Category = "product"
	CategoryPrice    Category = "price"
	CategoryOther    Category = "other"
)

// ParseCategory maps s to a known Category; unknown labels become other.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryHeadline, CategoryCTA, CategoryLogo, CategoryHero, CategoryProduct, CategoryPrice:
		return c
	default:
		return CategoryOther
	}
}

// Hotspot is a normalized rectangle on the page screenshot. Detectors return
// unsanitized candidates in this shape; after Sanitize every numeric field is
// finite and in [0,1] with Width and Height > 0.
type Hotspot struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category"`
	Reason     string   `json:"reason,omitempty"`
}

// Area returns Width*Height.
func (h Hotspot) Area() float64 {
	return h.Width * h.Height
}

// PageContext is everything a detector may look at.
type PageContext struct {
	URL      string
	Device   string
	Parity   bool
	FullPage bool

	// ViewportWidth and ViewportHeight are the CSS viewport size.
	ViewportWidth  int
	ViewportHeight int

	// PageHeight is the CSS height covered by the screenshot; at least
	// ViewportHeight for full-page captures.
	PageHeight int

	Screenshot image.Image
	Elements   []page.Element
	Summary    *page.Summary
}

// Meta describes how a candidate set was produced.
type Meta struct {
	Engine          string        `json:"engine"`
	Fallback        bool          `json:"fallback"`
	FallbackReason  string        `json:"fallback_reason,omitempty"`
	Cached          bool          `json:"cached"`
	PromptSignature string        `json:"prompt_signature,omitempty"`
	Dropped         int           `json:"dropped_candidates"`
	Duration        time.Duration `json:"-"`
}

// Result is a detector's output.
type Result struct {
	Hotspots []Hotspot
	Meta     Meta
}

// Detector produces candidate hotspots for a page.
type Detector interface {
	Detect(ctx context.Context, pc PageContext) (*Result, error)

	// Name is the engine identifier recorded in metadata.
	Name() string
}

// Signer is implemented by detectors whose output depends on a prompt.
// The signature is part of the cache key.
type Signer interface {
	PromptSignature() string
}

// ErrDetectionFailed wraps every detector failure.
var ErrDetectionFailed = errors.New("hotspot detection failed")
