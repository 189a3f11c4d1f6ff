package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix of every environment override, e.g. HEATMAP_MODEL_API_KEY.
const envPrefix = "HEATMAP"

// newViper returns a viper instance with env binding and every known key
// registered, so that HEATMAP_* variables override keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("render.workers", DefaultWorkers)
	v.SetDefault("render.max_pixels", DefaultMaxPixels)
	v.SetDefault("render.output_format", DefaultOutputFormat)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.capacity", DefaultCacheCapacity)
	v.SetDefault("screenshot.renderer_enabled", true)
	v.SetDefault("screenshot.renderer_timeout", DefaultRendererTimeout)
	v.SetDefault("screenshot.retries", DefaultRetries)
	v.SetDefault("screenshot.backoff", DefaultBackoff)
	v.SetDefault("screenshot.min_bytes", DefaultMinBytes)
	v.SetDefault("model.enabled", false)
	v.SetDefault("model.endpoint", DefaultModelEndpoint)
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.model", DefaultModelName)
	v.SetDefault("model.timeout", DefaultModelTimeout)
	v.SetDefault("model.max_image_width", DefaultModelMaxImageWidth)
	v.SetDefault("metrics.addr", "")
	return v
}

// Load reads configPath (when non-empty), merges HEATMAP_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	cfg, err := unmarshalAndFinalize(newViper())
	if err != nil {
		// Defaults are static; failing here means the constants are broken.
		panic(fmt.Sprintf("config: invalid built-in defaults: %v", err))
	}
	return cfg
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
