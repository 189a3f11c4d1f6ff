// Package config loads the heatmap engine's configuration from an optional
// YAML file and HEATMAP_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
)

// Config is the root configuration.
type Config struct {
	Log        logging.Config   `mapstructure:"log"`
	Render     RenderConfig     `mapstructure:"render"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Model      ModelConfig      `mapstructure:"model"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// RenderConfig tunes the raster pipeline.
type RenderConfig struct {
	// Workers is the number of goroutines used by blur and colorize. 1 is sequential.
	Workers int `mapstructure:"workers"`

	// MaxPixels bounds the composited output; larger inputs are downscaled.
	MaxPixels int `mapstructure:"max_pixels"`

	// OutputFormat is png or jpeg.
	OutputFormat string `mapstructure:"output_format"`
}

// CacheConfig controls the hotspot cache.
type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

// ScreenshotConfig configures the provider chain.
type ScreenshotConfig struct {
	RendererEnabled bool             `mapstructure:"renderer_enabled"`
	RendererTimeout time.Duration    `mapstructure:"renderer_timeout"`
	Retries         int              `mapstructure:"retries"`
	Backoff         time.Duration    `mapstructure:"backoff"`
	MinBytes        int              `mapstructure:"min_bytes"`
	Hosted          []HostedProvider `mapstructure:"hosted"`
}

// HostedProvider describes an external screenshot service.
//
// Endpoint is a URL template; {url}, {width}, {height} and {full_page} are
// substituted per request.
type HostedProvider struct {
	ID          string        `mapstructure:"id"`
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	APIKeyParam string        `mapstructure:"api_key_param"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ModelConfig configures the model-assisted hotspot detector.
type ModelConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxImageWidth int           `mapstructure:"max_image_width"`
}

// MetricsConfig configures the optional /metrics listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be >= 1, got %d", c.Render.Workers)
	}
	if c.Render.MaxPixels < 1 {
		return fmt.Errorf("render.max_pixels must be positive, got %d", c.Render.MaxPixels)
	}
	switch c.Render.OutputFormat {
	case "png", "jpeg":
	default:
		return fmt.Errorf("render.output_format must be png or jpeg, got %q", c.Render.OutputFormat)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be >= 1, got %d", c.Cache.Capacity)
	}
	if c.Screenshot.Retries < 0 {
		return fmt.Errorf("screenshot.retries must be >= 0, got %d", c.Screenshot.Retries)
	}
	seen := make(map[string]bool)
	for i, h := range c.Screenshot.Hosted {
		if strings.TrimSpace(h.ID) == "" {
			return fmt.Errorf("screenshot.hosted[%d]: id is required", i)
		}
		if seen[h.ID] {
			return fmt.Errorf("screenshot.hosted[%d]: duplicate id %q", i, h.ID)
		}
		seen[h.ID] = true
		if !strings.Contains(h.Endpoint, "{url}") {
			return fmt.Errorf("screenshot.hosted[%d]: endpoint must contain {url}", i)
		}
	}
	if c.Model.Enabled && strings.TrimSpace(c.Model.APIKey) == "" {
		return fmt.Errorf("model.api_key is required when model.enabled is true")
	}
	return nil
}
