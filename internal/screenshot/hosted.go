package screenshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ironsheep/attention-heatmap-mcp/internal/config"
)

const maxImageBytes = 32 << 20

// Hosted fetches screenshots from an external HTTP service.
type Hosted struct {
	cfg    config.HostedProvider
	client *retryablehttp.Client
}

// NewHosted creates a hosted provider. Retries belong to the Chain, so a nil
// client gets one that does not retry on its own.
func NewHosted(cfg config.HostedProvider, client *retryablehttp.Client) *Hosted {
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 0
		client.Logger = nil
	}
	return &Hosted{cfg: cfg, client: client}
}

// ID returns the configured provider id.
func (h *Hosted) ID() string {
	return h.cfg.ID
}

// BuildURL fills the endpoint template for req and appends the api key
// query parameter when one is configured.
func (h *Hosted) BuildURL(req Request) (string, error) {
	vp := req.Device.Viewport()
	r := strings.NewReplacer(
		"{url}", url.QueryEscape(req.URL),
		"{width}", strconv.Itoa(vp.Width),
		"{height}", strconv.Itoa(vp.Height),
		"{full_page}", strconv.FormatBool(req.FullPage),
	)

	u, err := url.Parse(r.Replace(h.cfg.Endpoint))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint for %s: %w", h.cfg.ID, err)
	}
	if h.cfg.APIKey != "" {
		param := h.cfg.APIKeyParam
		if param == "" {
			param = config.DefaultAPIKeyParam
		}
		q := u.Query()
		q.Set(param, h.cfg.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Capture GETs the screenshot within the provider's timeout.
func (h *Hosted) Capture(ctx context.Context, req Request) (*Capture, error) {
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	target, err := h.BuildURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "image/png,image/jpeg,image/webp,image/*")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", h.cfg.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned HTTP %d", h.cfg.ID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", h.cfg.ID, err)
	}
	return &Capture{Image: data, Provider: h.cfg.ID}, nil
}
