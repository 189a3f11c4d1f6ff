package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHeadings = 12
	maxCTAs     = 10
	maxPrices   = 8
	maxTextLen  = 120
)

// Heading is a document heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Summary is a compact structural digest of a page's HTML.
type Summary struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Headings    []Heading `json:"headings,omitempty"`
	CTAs        []string  `json:"ctas,omitempty"`
	Prices      []string  `json:"prices,omitempty"`
	Images      int       `json:"images"`
	HasLogo     bool      `json:"has_logo"`
}

// Summarize parses html and extracts the title, meta description, headings,
// call-to-action labels and prices, in document order and deduplicated.
func Summarize(html string) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	s := &Summary{
		Title: clean(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		s.Description = clean(desc)
	}

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if len(s.Headings) >= maxHeadings {
			return
		}
		text := clean(sel.Text())
		if text == "" {
			return
		}
		level := int(goquery.NodeName(sel)[1] - '0')
		s.Headings = append(s.Headings, Heading{Level: level, Text: text})
	})

	seen := make(map[string]bool)
	doc.Find(`a, button, input[type="submit"], input[type="button"], [role="button"]`).Each(func(_ int, sel *goquery.Selection) {
		if len(s.CTAs) >= maxCTAs {
			return
		}
		text := clean(sel.Text())
		if text == "" {
			text, _ = sel.Attr("value")
			text = clean(text)
		}
		key := strings.ToLower(text)
		if !IsCTAText(text) || seen[key] {
			return
		}
		seen[key] = true
		s.CTAs = append(s.CTAs, text)
	})

	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if len(s.Prices) >= maxPrices || sel.Children().Length() > 0 {
			return
		}
		text := clean(sel.Text())
		if text == "" || !HasPrice(text) || seen[text] {
			return
		}
		seen[text] = true
		s.Prices = append(s.Prices, pricePattern.FindString(text))
	})

	s.Images = doc.Find("img").Length()
	doc.Find("img, svg, a, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id, _ := sel.Attr("id")
		class, _ := sel.Attr("class")
		alt, _ := sel.Attr("alt")
		if strings.Contains(strings.ToLower(id+" "+class+" "+alt), "logo") {
			s.HasLogo = true
			return false
		}
		return true
	})

	return s, nil
}

// Text renders the summary as short labelled lines for a model prompt.
func (s *Summary) Text() string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", s.Title)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", s.Description)
	}
	for _, h := range s.Headings {
		fmt.Fprintf(&b, "H%d: %s\n", h.Level, h.Text)
	}
	if len(s.CTAs) > 0 {
		fmt.Fprintf(&b, "Calls to action: %s\n", strings.Join(s.CTAs, " | "))
	}
	if len(s.Prices) > 0 {
		fmt.Fprintf(&b, "Prices: %s\n", strings.Join(s.Prices, " | "))
	}
	fmt.Fprintf(&b, "Images: %d, logo present: %t\n", s.Images, s.HasLogo)
	return b.String()
}

// clean collapses whitespace and truncates to maxTextLen runes.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTextLen {
		s = string(r[:maxTextLen])
	}
	return s
}
