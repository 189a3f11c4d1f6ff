package screenshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/page"
)

// RendererID is the provider id of the in-process renderer.
const RendererID = "renderer"

// extractElementsScript collects visible, content-bearing elements with
// their page-relative layout boxes. It returns a JSON string.
const extractElementsScript = `() => {
  const sel = 'h1,h2,h3,a,button,input[type=submit],input[type=button],[role=button],img,picture,video,svg,[class*=logo],[id*=logo],[class*=hero],[class*=banner],[class*=product],[class*=price]';
  const out = [];
  for (const el of document.querySelectorAll(sel)) {
    const r = el.getBoundingClientRect();
    if (r.width < 4 || r.height < 4) continue;
    const cs = getComputedStyle(el);
    if (cs.visibility === 'hidden' || cs.display === 'none' || Number(cs.opacity) === 0) continue;
    out.push({
      tag: el.tagName.toLowerCase(),
      text: (el.innerText || el.value || '').trim().slice(0, 120),
      id: el.id || '',
      class: typeof el.className === 'string' ? el.className : '',
      role: el.getAttribute('role') || '',
      alt: el.getAttribute('alt') || '',
      x: r.left + window.scrollX,
      y: r.top + window.scrollY,
      width: r.width,
      height: r.height,
      fontSize: parseFloat(cs.fontSize) || 0,
      fontWeight: parseInt(cs.fontWeight, 10) || 400,
    });
    if (out.length >= 400) break;
  }
  return JSON.stringify(out);
}`

const pageHeightScript = `() => Math.max(document.documentElement.scrollHeight, document.body ? document.body.scrollHeight : 0)`

// Renderer captures pages in a headless Chromium driven by playwright. The
// browser is started on first use and shared by all captures.
type Renderer struct {
	timeout time.Duration
	logger  logging.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewRenderer creates a renderer whose captures are bounded by timeout.
func NewRenderer(timeout time.Duration, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Renderer{timeout: timeout, logger: logger.Named("renderer")}
}

// ID returns RendererID.
func (r *Renderer) ID() string {
	return RendererID
}

func (r *Renderer) ensureBrowser() (playwright.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil && r.browser.IsConnected() {
		return r.browser, nil
	}
	if r.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("starting playwright: %w", err)
		}
		r.pw = pw
	}

	browser, err := r.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	r.browser = browser
	r.logger.Info("browser started")
	return browser, nil
}

// Capture loads req.URL at the device viewport, waits for the network to go
// idle and takes a PNG screenshot together with the HTML and visible
// elements.
func (r *Renderer) Capture(ctx context.Context, req Request) (*Capture, error) {
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	vp := req.Device.Viewport()
	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  vp.Width,
			Height: vp.Height,
		},
		DeviceScaleFactor: playwright.Float(1),
		IsMobile:          playwright.Bool(req.Device == DeviceMobile),
		HasTouch:          playwright.Bool(req.Device != DeviceDesktop),
	})
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	defer browserCtx.Close()

	pg, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer pg.Close()

	ms := playwright.Float(float64(timeout.Milliseconds()))
	if _, err := pg.Goto(req.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   ms,
	}); err != nil {
		return nil, fmt.Errorf("navigating to page: %w", err)
	}

	shot, err := pg.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(req.FullPage),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  ms,
	})
	if err != nil {
		return nil, fmt.Errorf("taking screenshot: %w", err)
	}

	c := &Capture{Image: shot, Provider: RendererID, PageHeight: vp.Height}

	if html, err := pg.Content(); err == nil {
		c.HTML = html
	} else {
		r.logger.Debug("failed to read page content", logging.Err(err))
	}

	if raw, err := pg.Evaluate(extractElementsScript); err == nil {
		c.Elements = decodeElements(raw)
	} else {
		r.logger.Debug("failed to extract elements", logging.Err(err))
	}

	if req.FullPage {
		if h, err := pg.Evaluate(pageHeightScript); err == nil {
			if f, ok := h.(float64); ok && int(f) > vp.Height {
				c.PageHeight = int(f)
			} else if n, ok := h.(int); ok && n > vp.Height {
				c.PageHeight = n
			}
		}
	}

	return c, nil
}

// decodeElements parses the JSON string returned by extractElementsScript.
func decodeElements(raw interface{}) []page.Element {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	var els []page.Element
	if err := json.Unmarshal([]byte(s), &els); err != nil {
		return nil
	}
	return els
}

// Close shuts down the browser and the playwright driver.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			firstErr = err
		}
		r.browser = nil
	}
	if r.pw != nil {
		if err := r.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.pw = nil
	}
	return firstErr
}
