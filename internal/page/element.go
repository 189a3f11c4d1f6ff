package page

import (
	"regexp"
	"strings"
)

// Element is a visible DOM element with its layout box in CSS pixels,
// relative to the top of the page.
type Element struct {
	Tag        string  `json:"tag"`
	Text       string  `json:"text,omitempty"`
	ID         string  `json:"id,omitempty"`
	Class      string  `json:"class,omitempty"`
	Role       string  `json:"role,omitempty"`
	Alt        string  `json:"alt,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight int     `json:"fontWeight,omitempty"`
}

// Area returns Width*Height, or 0 for degenerate boxes.
func (e Element) Area() float64 {
	if e.Width <= 0 || e.Height <= 0 {
		return 0
	}
	return e.Width * e.Height
}

// Descriptor joins the id, class, role and alt text in lower case for keyword
// matching.
func (e Element) Descriptor() string {
	return strings.ToLower(strings.Join([]string{e.ID, e.Class, e.Role, e.Alt}, " "))
}

var ctaWords = []string{
	"buy", "shop", "sign up", "signup", "get started", "start", "try", "subscribe",
	"download", "book", "order", "add to cart", "checkout", "contact", "join",
	"learn more", "register", "request a demo", "demo", "free trial",
}

// pricePattern matches amounts like $19, €9.99, 1,299.00 USD or 49 kr.
var pricePattern = regexp.MustCompile(`(?i)([$€£¥]\s?\d[\d,.]*|\d[\d,.]*\s?(usd|eur|gbp|kr|zł))`)

// IsCTAText reports whether text reads like a call to action.
func IsCTAText(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || len(t) > 60 {
		return false
	}
	for _, w := range ctaWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// HasPrice reports whether text contains a price.
func HasPrice(text string) bool {
	return pricePattern.MatchString(text)
}
