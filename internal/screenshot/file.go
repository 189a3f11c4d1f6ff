package screenshot

import (
	"context"

	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
)

// FileID is the provider id of File.
const FileID = "file"

// File serves a screenshot already saved on disk, whatever the request URL.
// The file must decode as an image.
type File struct {
	path string
}

// NewFile creates a provider for the image at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// ID returns "file".
func (f *File) ID() string {
	return FileID
}

// Capture reads the file on every call so an edited capture is picked up.
func (f *File) Capture(ctx context.Context, _ Request) (*Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, data, err := imaging.LoadFile(f.path)
	if err != nil {
		return nil, err
	}
	return &Capture{Image: data}, nil
}
