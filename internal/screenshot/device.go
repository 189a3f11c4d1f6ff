package screenshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
)

// Device is a canonical device class.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// Viewport is a CSS viewport size in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var viewports = map[Device]Viewport{
	DeviceDesktop: {Width: 1440, Height: 900},
	DeviceTablet:  {Width: 768, Height: 1024},
	DeviceMobile:  {Width: 390, Height: 844},
}

// ParseDevice maps a device name to a Device. Matching ignores case and
// surrounding space.
func ParseDevice(s string) (Device, error) {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := viewports[d]; !ok {
		return "", fmt.Errorf("unknown device %q: must be desktop, tablet or mobile", s)
	}
	return d, nil
}

// Viewport returns the device's reference viewport. Unknown devices get
// the desktop viewport.
func (d Device) Viewport() Viewport {
	if vp, ok := viewports[d]; ok {
		return vp
	}
	return viewports[DeviceDesktop]
}

// Request describes one screenshot.
type Request struct {
	URL      string
	Device   Device
	FullPage bool
}

// Capture is a screenshot and whatever page data the provider could collect
// alongside it.
type Capture struct {
	// Image holds the encoded screenshot bytes.
	Image []byte

	// Provider is the id of the provider that produced Image.
	Provider string

	// Degraded marks a placeholder produced after every provider failed.
	Degraded bool

	// HTML and Elements are only filled by providers that render the page
	// themselves.
	HTML     string
	Elements []page.Element

	// PageHeight is the CSS height of the captured area, 0 when unknown.
	PageHeight int
}

// Provider produces screenshots.
type Provider interface {
	ID() string
	Capture(ctx context.Context, req Request) (*Capture, error)
}

var (
	// ErrAllProvidersExhausted is returned when no provider produced a
	// usable screenshot.
	ErrAllProvidersExhausted = errors.New("all screenshot providers exhausted")

	// ErrTooSmall marks a reply too small to be a real screenshot.
	ErrTooSmall = errors.New("screenshot response too small")
)
