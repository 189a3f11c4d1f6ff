package screenshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

func TestFile_Capture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	data := Placeholder(Viewport{Width: 40, Height: 30})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	f := NewFile(path)
	assert.Equal(t, FileID, f.ID())

	c, err := f.Capture(context.Background(), Request{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, data, c.Image)
}

func TestFile_CaptureErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFile(filepath.Join(dir, "missing.png")).Capture(context.Background(), Request{})
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	_, err = NewFile(junk).Capture(context.Background(), Request{})
	assert.ErrorIs(t, err, imaging.ErrUndecodable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFile(junk).Capture(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
