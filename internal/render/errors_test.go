package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/attention-heatmap-mcp/internal/heatmap"
)

func TestError(t *testing.T) {
	cause := errors.New("index out of range")
	err := rasterError(PhaseAccumulate, cause)

	assert.Equal(t, "RasterFailure in accumulate: raster stage failed: index out of range", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("render: %w", err)
	assert.True(t, IsKind(wrapped, KindRasterFailure))
	assert.False(t, IsKind(wrapped, KindInputInvalid))
	assert.False(t, IsKind(cause, KindRasterFailure))

	e := invalid("mode must be data or ai, got %q", "x")
	assert.Equal(t, `InputInvalid in validate: mode must be data or ai, got "x"`, e.Error())
	assert.Nil(t, e.Unwrap())
}

func TestValidate_DefaultMode(t *testing.T) {
	v, err := validate(Request{URL: "https://example.com"})
	assert.NoError(t, err)
	assert.Equal(t, heatmap.ModeAI, v.mode)

	v, err = validate(Request{URL: "https://example.com", Points: []heatmap.NormalizedPoint{{X: 0, Y: 1}}})
	assert.NoError(t, err)
	assert.Equal(t, heatmap.ModeData, v.mode)

	v, err = validate(Request{URL: "http://example.com/p", Device: " Tablet ", Mode: "AI"})
	assert.NoError(t, err)
	assert.Equal(t, heatmap.ModeAI, v.mode)
	assert.Equal(t, "tablet", string(v.device))
}
