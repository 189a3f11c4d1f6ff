package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New(Config{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestFieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core).Named("render").With(String("request_id", "abc"))

	l.Warn("provider failed",
		String("provider", "renderer"),
		Int("attempt", 2),
		Float64("ratio", 0.5),
		Bool("degraded", true),
		Duration("elapsed", time.Second),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "provider failed", entry.Message)
	assert.Equal(t, "render", entry.LoggerName)

	fields := entry.ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, "renderer", fields["provider"])
	assert.Equal(t, int64(2), fields["attempt"])
	assert.Equal(t, true, fields["degraded"])
	assert.Equal(t, "boom", fields["error"])
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.NotNil(t, l.With(String("a", "b")).Named("n"))
}

func TestKeyValueLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	kv := KeyValueLogger{L: NewFromCore(core)}

	kv.Debug("retrying request", "url", "https://example.com", "attempt", 2)
	kv.Warn("odd", "k", "v", "dangling")
	kv.Info("plain")
	kv.Error("bad", 7, "seven")

	require.Equal(t, 4, logs.Len())
	first := logs.All()[0].ContextMap()
	assert.Equal(t, "https://example.com", first["url"])
	assert.Equal(t, int64(2), first["attempt"])

	second := logs.All()[1].ContextMap()
	assert.Equal(t, "v", second["k"])
	assert.Equal(t, "dangling", second["extra"])

	assert.Equal(t, "seven", logs.All()[3].ContextMap()["7"])
}
