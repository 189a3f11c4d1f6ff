package config

import "time"

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkers      = 1
	DefaultMaxPixels    = 8_000_000
	DefaultOutputFormat = "png"

	DefaultCacheTTL      = 10 * time.Minute
	DefaultCacheCapacity = 100

	DefaultRendererTimeout = 30 * time.Second
	DefaultHostedTimeout   = 7 * time.Second
	DefaultRetries         = 2
	DefaultBackoff         = time.Second
	DefaultMinBytes        = 1024
	DefaultAPIKeyParam     = "access_key"

	DefaultModelEndpoint      = "https://api.openai.com/v1/chat/completions"
	DefaultModelName          = "gpt-4o-mini"
	DefaultModelTimeout       = 20 * time.Second
	DefaultModelMaxImageWidth = 768
)

// ApplyDefaults fills zero-value fields. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Render.Workers == 0 {
		cfg.Render.Workers = DefaultWorkers
	}
	if cfg.Render.MaxPixels == 0 {
		cfg.Render.MaxPixels = DefaultMaxPixels
	}
	if cfg.Render.OutputFormat == "" {
		cfg.Render.OutputFormat = DefaultOutputFormat
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = DefaultCacheCapacity
	}

	if cfg.Screenshot.RendererTimeout == 0 {
		cfg.Screenshot.RendererTimeout = DefaultRendererTimeout
	}
	if cfg.Screenshot.Backoff == 0 {
		cfg.Screenshot.Backoff = DefaultBackoff
	}
	if cfg.Screenshot.MinBytes == 0 {
		cfg.Screenshot.MinBytes = DefaultMinBytes
	}
	for i := range cfg.Screenshot.Hosted {
		h := &cfg.Screenshot.Hosted[i]
		if h.Timeout == 0 {
			h.Timeout = DefaultHostedTimeout
		}
		if h.APIKey != "" && h.APIKeyParam == "" {
			h.APIKeyParam = DefaultAPIKeyParam
		}
	}

	if cfg.Model.Endpoint == "" {
		cfg.Model.Endpoint = DefaultModelEndpoint
	}
	if cfg.Model.Model == "" {
		cfg.Model.Model = DefaultModelName
	}
	if cfg.Model.Timeout == 0 {
		cfg.Model.Timeout = DefaultModelTimeout
	}
	if cfg.Model.MaxImageWidth == 0 {
		cfg.Model.MaxImageWidth = DefaultModelMaxImageWidth
	}
}
