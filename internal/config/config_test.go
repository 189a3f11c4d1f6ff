package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heatmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, 1, cfg.Render.Workers)
	assert.Equal(t, 8_000_000, cfg.Render.MaxPixels)
	assert.Equal(t, "png", cfg.Render.OutputFormat)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.True(t, cfg.Screenshot.RendererEnabled)
	assert.Equal(t, 2, cfg.Screenshot.Retries)
	assert.Equal(t, time.Second, cfg.Screenshot.Backoff)
	assert.Equal(t, 1024, cfg.Screenshot.MinBytes)
	assert.False(t, cfg.Model.Enabled)
	assert.Equal(t, DefaultModelEndpoint, cfg.Model.Endpoint)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
render:
  workers: 4
  output_format: jpeg
cache:
  ttl: 5m
screenshot:
  retries: 0
  hosted:
    - id: shots
      endpoint: "https://shots.example.com/capture?url={url}&w={width}&h={height}"
      api_key: secret
model:
  enabled: true
  api_key: sk-test
  timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Render.Workers)
	assert.Equal(t, "jpeg", cfg.Render.OutputFormat)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0, cfg.Screenshot.Retries)
	require.Len(t, cfg.Screenshot.Hosted, 1)
	assert.Equal(t, "shots", cfg.Screenshot.Hosted[0].ID)
	assert.Equal(t, DefaultHostedTimeout, cfg.Screenshot.Hosted[0].Timeout)
	assert.Equal(t, DefaultAPIKeyParam, cfg.Screenshot.Hosted[0].APIKeyParam)
	assert.True(t, cfg.Model.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Model.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HEATMAP_RENDER_WORKERS", "3")
	t.Setenv("HEATMAP_MODEL_MODEL", "vision-large")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Render.Workers)
	assert.Equal(t, "vision-large", cfg.Model.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Render.Workers = 0 }},
		{"bad format", func(c *Config) { c.Render.OutputFormat = "gif" }},
		{"negative retries", func(c *Config) { c.Screenshot.Retries = -1 }},
		{"hosted without id", func(c *Config) {
			c.Screenshot.Hosted = []HostedProvider{{Endpoint: "https://x/?u={url}"}}
		}},
		{"hosted without url placeholder", func(c *Config) {
			c.Screenshot.Hosted = []HostedProvider{{ID: "a", Endpoint: "https://x/"}}
		}},
		{"duplicate hosted id", func(c *Config) {
			c.Screenshot.Hosted = []HostedProvider{
				{ID: "a", Endpoint: "https://x/?u={url}"},
				{ID: "a", Endpoint: "https://y/?u={url}"},
			}
		}},
		{"model without key", func(c *Config) { c.Model.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
