package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/metrics"
)

// PlaceholderID is the provider id of the degraded placeholder.
const PlaceholderID = "placeholder"

// ChainOptions tunes retries.
type ChainOptions struct {
	// Retries is the number of extra attempts per provider.
	Retries int

	// Backoff is the constant wait between attempts.
	Backoff time.Duration

	// MinBytes is the smallest response accepted as a screenshot.
	MinBytes int
}

// Chain tries providers in order until one yields a usable screenshot.
type Chain struct {
	providers []Provider
	opts      ChainOptions
	rec       *metrics.Recorder
	logger    logging.Logger
}

// NewChain creates a provider chain.
func NewChain(providers []Provider, opts ChainOptions, rec *metrics.Recorder, logger logging.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Chain{providers: providers, opts: opts, rec: rec, logger: logger.Named("screenshot")}
}

// Providers returns the provider ids in priority order.
func (c *Chain) Providers() []string {
	ids := make([]string, len(c.providers))
	for i, p := range c.providers {
		ids[i] = p.ID()
	}
	return ids
}

// Acquire returns the first usable screenshot. It fails with
// ErrAllProvidersExhausted, wrapping the last provider error, only after
// every provider has used up its attempts.
func (c *Chain) Acquire(ctx context.Context, req Request) (*Capture, error) {
	var lastErr error

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		capture, err := c.try(ctx, p, req)
		if err == nil {
			return capture, nil
		}
		lastErr = err
		c.logger.Warn("screenshot provider failed",
			logging.String("provider", p.ID()),
			logging.String("url", req.URL),
			logging.Err(err))
	}

	if lastErr == nil {
		lastErr = errors.New("no providers configured")
	}
	return nil, fmt.Errorf("%w: %v", ErrAllProvidersExhausted, lastErr)
}

func (c *Chain) try(ctx context.Context, p Provider, req Request) (*Capture, error) {
	var result *Capture

	op := func() error {
		capture, err := p.Capture(ctx, req)
		if err != nil {
			c.rec.ScreenshotAttempt(p.ID(), metrics.OutcomeError)
			return err
		}
		if len(capture.Image) < c.opts.MinBytes {
			c.rec.ScreenshotAttempt(p.ID(), metrics.OutcomeTooSmall)
			return backoff.Permanent(fmt.Errorf("%w: %d bytes from %s", ErrTooSmall, len(capture.Image), p.ID()))
		}
		c.rec.ScreenshotAttempt(p.ID(), metrics.OutcomeSuccess)
		capture.Provider = p.ID()
		result = capture
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.opts.Backoff), uint64(c.opts.Retries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying screenshot provider",
			logging.String("provider", p.ID()),
			logging.Duration("wait", wait),
			logging.Err(err))
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return result, nil
}

// AcquireOrPlaceholder is Acquire with the degraded fallback: when every
// provider fails it returns a viewport-sized gray placeholder with Degraded
// set. The returned error is the exhaustion cause and is informational.
func (c *Chain) AcquireOrPlaceholder(ctx context.Context, req Request) (*Capture, error) {
	capture, err := c.Acquire(ctx, req)
	if err == nil {
		return capture, nil
	}

	c.logger.Warn("using placeholder screenshot", logging.String("url", req.URL), logging.Err(err))
	vp := req.Device.Viewport()
	return &Capture{
		Image:      Placeholder(vp),
		Provider:   PlaceholderID,
		Degraded:   true,
		PageHeight: vp.Height,
	}, err
}

// PlaceholderColor is the fill of the placeholder image.
var PlaceholderColor = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}

var (
	placeholderMu    sync.Mutex
	placeholderCache = map[Viewport][]byte{}
)

// Placeholder returns a PNG of vp's size filled with PlaceholderColor.
// Encoded images are memoized per viewport; callers must not modify them.
func Placeholder(vp Viewport) []byte {
	placeholderMu.Lock()
	defer placeholderMu.Unlock()

	if data, ok := placeholderCache[vp]; ok {
		return data
	}

	img := image.NewNRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = PlaceholderColor.R
		img.Pix[i+1] = PlaceholderColor.G
		img.Pix[i+2] = PlaceholderColor.B
		img.Pix[i+3] = PlaceholderColor.A
	}

	var buf bytes.Buffer
	// Encoding an in-memory NRGBA into a bytes.Buffer cannot fail.
	_ = png.Encode(&buf, img)
	data := buf.Bytes()
	placeholderCache[vp] = data
	return data
}
