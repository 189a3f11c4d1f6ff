package hotspot

import (
	"context"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
)

// Heuristic scoring weights.
const (
	weightAboveFold = 0.25
	weightCenter    = 0.15
	weightAreaMax   = 0.2
	weightH1        = 0.3
	weightH2        = 0.2
	weightH3        = 0.1
	weightCTA       = 0.3
	weightLogo      = 0.25
	weightHero      = 0.2
	weightProduct   = 0.15
	weightPrice     = 0.2
	weightBold      = 0.05
	weightLargeFont = 0.1

	heuristicFloor      = 0.3
	heuristicMaxOverlap = 0.6
	boldWeight          = 600
	largeFontPx         = 24
	heroAreaFraction    = 0.25
)

const (
	EngineHeuristic       = "heuristic"
	EngineHeuristicVisual = "heuristic:visual"
	EngineHeuristicLayout = "heuristic:layout"
)

// VisualSource finds element-like blocks directly in screenshot pixels. It
// is used when no DOM elements are available. Returned boxes are in
// screenshot pixels.
type VisualSource interface {
	Elements(ctx context.Context, img image.Image) ([]page.Element, error)
}

// Heuristic scores page elements with a fixed rule set. It never fails.
type Heuristic struct {
	visual VisualSource
	logger logging.Logger
}

// NewHeuristic creates the rule-based detector. visual may be nil.
func NewHeuristic(visual VisualSource, logger logging.Logger) *Heuristic {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Heuristic{visual: visual, logger: logger.Named("heuristic")}
}

// Name returns "heuristic".
func (h *Heuristic) Name() string {
	return EngineHeuristic
}

// Detect scores DOM elements, or visual blocks when there are none, and
// returns up to DefaultMaxHotspots candidates. With neither available it
// returns a fixed layout prior.
func (h *Heuristic) Detect(ctx context.Context, pc PageContext) (*Result, error) {
	f := frameOf(pc)
	elements := pc.Elements
	engine := EngineHeuristic

	if len(elements) == 0 && h.visual != nil && pc.Screenshot != nil {
		blocks, err := h.visual.Elements(ctx, pc.Screenshot)
		if err != nil {
			h.logger.Warn("visual block extraction failed", logging.String("url", pc.URL), logging.Err(err))
		} else if len(blocks) > 0 {
			elements = toCSSPixels(blocks, pc.Screenshot.Bounds().Dx(), f.width)
			engine = EngineHeuristicVisual
		}
	}

	if len(elements) == 0 {
		h.logger.Debug("no elements to score, using layout prior", logging.String("url", pc.URL))
		return &Result{Hotspots: layoutPrior(f), Meta: Meta{Engine: EngineHeuristicLayout}}, nil
	}

	hotspots := Rank(elements, f.width, f.viewHeight, f.pageHeight)
	h.logger.Debug("heuristic detection complete",
		logging.String("engine", engine),
		logging.Int("elements", len(elements)),
		logging.Int("candidates", len(hotspots)))

	return &Result{Hotspots: hotspots, Meta: Meta{Engine: engine}}, nil
}

type frame struct {
	width      float64
	viewHeight float64
	pageHeight float64
}

func frameOf(pc PageContext) frame {
	f := frame{
		width:      float64(pc.ViewportWidth),
		viewHeight: float64(pc.ViewportHeight),
		pageHeight: float64(pc.PageHeight),
	}
	if pc.Screenshot != nil {
		b := pc.Screenshot.Bounds()
		if f.width <= 0 {
			f.width = float64(b.Dx())
		}
		if f.viewHeight <= 0 {
			f.viewHeight = float64(b.Dy())
		}
	}
	if f.width <= 0 {
		f.width = 1
	}
	if f.viewHeight <= 0 {
		f.viewHeight = 1
	}
	if f.pageHeight < f.viewHeight {
		f.pageHeight = f.viewHeight
	}
	return f
}

func toCSSPixels(blocks []page.Element, imgWidth int, cssWidth float64) []page.Element {
	if imgWidth <= 0 {
		return blocks
	}
	s := cssWidth / float64(imgWidth)
	out := make([]page.Element, len(blocks))
	for i, b := range blocks {
		b.X *= s
		b.Y *= s
		b.Width *= s
		b.Height *= s
		b.FontSize *= s
		out[i] = b
	}
	return out
}

// Scored is an element with its heuristic score and the rules it matched.
type Scored struct {
	Element  page.Element
	Score    float64
	Category Category
	Rules    []string
}

// Score applies the rule set to one element. viewWidth and viewHeight are
// the CSS viewport size.
func Score(e page.Element, viewWidth, viewHeight float64) Scored {
	s := Scored{Element: e, Category: CategoryOther}
	add := func(w float64, rule string) {
		s.Score += w
		s.Rules = append(s.Rules, rule)
	}

	if e.Y < viewHeight {
		add(weightAboveFold, "above the fold")
	}

	if viewWidth > 0 {
		half := viewWidth / 2
		dist := math.Abs(e.X+e.Width/2-half) / half
		if c := weightCenter * (1 - dist); c > 0 {
			s.Score += c
			if dist < 0.25 {
				s.Rules = append(s.Rules, "centered")
			}
		}
	}

	frac := 0.0
	if viewWidth > 0 && viewHeight > 0 {
		frac = e.Area() / (viewWidth * viewHeight)
	}
	s.Score += math.Min(weightAreaMax, 2*frac)

	tag := strings.ToLower(e.Tag)
	desc := e.Descriptor()
	var cats []Category

	switch tag {
	case "h1":
		add(weightH1, "h1 heading")
		cats = append(cats, CategoryHeadline)
	case "h2":
		add(weightH2, "h2 heading")
		cats = append(cats, CategoryHeadline)
	case "h3":
		add(weightH3, "h3 heading")
		cats = append(cats, CategoryHeadline)
	}

	clickable := tag == "button" || tag == "a" || tag == "input" || strings.EqualFold(e.Role, "button")
	if clickable && page.IsCTAText(e.Text) {
		add(weightCTA, "call to action")
		cats = append(cats, CategoryCTA)
	}
	if strings.Contains(desc, "logo") {
		add(weightLogo, "logo")
		cats = append(cats, CategoryLogo)
	}
	if strings.Contains(desc, "hero") || strings.Contains(desc, "banner") ||
		((tag == "img" || tag == "video" || tag == "picture") && frac >= heroAreaFraction) {
		add(weightHero, "hero")
		cats = append(cats, CategoryHero)
	}
	if strings.Contains(desc, "product") {
		add(weightProduct, "product")
		cats = append(cats, CategoryProduct)
	}
	if page.HasPrice(e.Text) {
		add(weightPrice, "price")
		cats = append(cats, CategoryPrice)
	}
	if e.FontWeight >= boldWeight {
		add(weightBold, "bold")
	}
	if e.FontSize >= largeFontPx {
		add(weightLargeFont, "large text")
	}

	s.Score = clamp01(s.Score)
	s.Category = pickCategory(cats)
	return s
}

var categoryPriority = []Category{
	CategoryLogo, CategoryCTA, CategoryPrice, CategoryHeadline, CategoryHero, CategoryProduct,
}

func pickCategory(cats []Category) Category {
	for _, p := range categoryPriority {
		for _, c := range cats {
			if c == p {
				return c
			}
		}
	}
	return CategoryOther
}

// Rank scores elements, keeps the ones above the floor that start above the
// fold, suppresses heavy overlaps and returns at most DefaultMaxHotspots
// hotspots normalized to the page.
func Rank(elements []page.Element, viewWidth, viewHeight, pageHeight float64) []Hotspot {
	if pageHeight < viewHeight {
		pageHeight = viewHeight
	}

	scored := make([]Scored, 0, len(elements))
	for _, e := range elements {
		if e.Area() <= 0 || e.Y >= viewHeight {
			continue
		}
		s := Score(e, viewWidth, viewHeight)
		if s.Score < heuristicFloor {
			continue
		}
		scored = append(scored, s)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	out := make([]Hotspot, 0, DefaultMaxHotspots)
	for _, s := range scored {
		c := Hotspot{
			X:          s.Element.X / viewWidth,
			Y:          s.Element.Y / pageHeight,
			Width:      s.Element.Width / viewWidth,
			Height:     s.Element.Height / pageHeight,
			Confidence: s.Score,
			Category:   s.Category,
			Reason:     strings.Join(s.Rules, ", "),
		}
		suppressed := false
		for _, k := range out {
			if OverlapRatio(c, k) > heuristicMaxOverlap {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		out = append(out, c)
		if len(out) == DefaultMaxHotspots {
			break
		}
	}
	return out
}

// layoutPrior is the conventional landing-page reading pattern: logo top
// left, headline and call to action in the upper center, navigation along
// the top. Regions are placed within the first viewport.
func layoutPrior(f frame) []Hotspot {
	fold := f.viewHeight / f.pageHeight
	return []Hotspot{
		{X: 0.03, Y: 0.01 * fold, Width: 0.18, Height: 0.08 * fold, Confidence: 0.55, Category: CategoryLogo, Reason: "layout prior: logo"},
		{X: 0.15, Y: 0.2 * fold, Width: 0.7, Height: 0.18 * fold, Confidence: 0.7, Category: CategoryHeadline, Reason: "layout prior: headline"},
		{X: 0.35, Y: 0.45 * fold, Width: 0.3, Height: 0.1 * fold, Confidence: 0.6, Category: CategoryCTA, Reason: "layout prior: call to action"},
		{X: 0.55, Y: 0.02 * fold, Width: 0.42, Height: 0.06 * fold, Confidence: 0.4, Category: CategoryOther, Reason: "layout prior: navigation"},
	}
}
