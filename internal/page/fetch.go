package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
)

const (
	userAgent       = "attention-heatmap/1.0 (+https://github.com/ironsheep/attention-heatmap-mcp)"
	maxHTMLBytes    = 2 << 20
	defaultFetchTTL = 10 * time.Second
)

// NewRetryClient builds the retrying HTTP client shared by outbound calls.
// retries is the number of attempts after the first; timeout bounds each
// attempt.
func NewRetryClient(retries int, timeout time.Duration, logger logging.Logger) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = timeout
	if logger == nil {
		c.Logger = nil
	} else {
		c.Logger = logging.KeyValueLogger{L: logger}
	}
	return c
}

// Fetcher downloads page HTML.
type Fetcher struct {
	client *retryablehttp.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with one retry.
func NewFetcher(client *retryablehttp.Client) *Fetcher {
	if client == nil {
		client = NewRetryClient(1, defaultFetchTTL, nil)
	}
	return &Fetcher{client: client}
}

// Fetch GETs url and returns at most 2 MiB of its body as a string.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}
