package detection

import (
	"context"
	"errors"
	"image"
	"testing"
)

type fakeReader struct {
	text  string
	err   error
	calls int
}

func (f *fakeReader) ReadRegion(image.Image, image.Rectangle) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestSource_Elements(t *testing.T) {
	img := createTextPatternImage(300, 140, image.Rect(20, 20, 260, 84))
	reader := &fakeReader{text: "Get started"}

	els, err := NewSource(reader, nil).Elements(context.Background(), img)
	if err != nil {
		t.Fatalf("Elements failed: %v", err)
	}
	if len(els) == 0 {
		t.Fatal("expected elements")
	}
	if reader.calls != len(els) {
		t.Errorf("reader calls: got %d, want %d", reader.calls, len(els))
	}
	for _, el := range els {
		if el.Tag != "block" {
			t.Errorf("tag: got %q, want block", el.Tag)
		}
		if el.Text != "Get started" {
			t.Errorf("text: got %q", el.Text)
		}
		if el.Width <= 0 || el.Height <= 0 {
			t.Errorf("degenerate element %+v", el)
		}
	}
}

func TestSource_ReaderErrorKeepsBlock(t *testing.T) {
	img := createTextPatternImage(300, 140, image.Rect(20, 20, 260, 84))
	reader := &fakeReader{err: errors.New("tesseract not installed")}

	els, err := NewSource(reader, nil).Elements(context.Background(), img)
	if err != nil {
		t.Fatalf("Elements failed: %v", err)
	}
	if len(els) == 0 {
		t.Fatal("expected elements")
	}
	if els[0].Text != "" {
		t.Errorf("text should be empty, got %q", els[0].Text)
	}
}

func TestSource_Cancelled(t *testing.T) {
	img := createHighEdgeDensityImage(200, 150)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSource(nil, nil).Elements(ctx, img); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestElementFor(t *testing.T) {
	origin := image.Pt(0, 0)

	tests := []struct {
		name     string
		block    Block
		wantTag  string
		wantRole string
		wantFont float64
	}{
		{
			name:     "graphic is image",
			block:    Block{Bounds: image.Rect(0, 0, 800, 400), Kind: KindGraphic},
			wantTag:  "img",
			wantFont: 0,
		},
		{
			name:     "saturated compact text is button",
			block:    Block{Bounds: image.Rect(100, 100, 260, 150), Kind: KindText, Saturation: 0.8},
			wantTag:  "block",
			wantRole: "button",
			wantFont: 30,
		},
		{
			name:     "gray text is plain",
			block:    Block{Bounds: image.Rect(100, 100, 260, 150), Kind: KindText, Saturation: 0.1},
			wantTag:  "block",
			wantFont: 30,
		},
		{
			name:     "tall text block has no font estimate",
			block:    Block{Bounds: image.Rect(0, 0, 600, 300), Kind: KindText, Saturation: 0.9},
			wantTag:  "block",
			wantFont: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := elementFor(tt.block, origin, 1)
			if el.Tag != tt.wantTag {
				t.Errorf("tag: got %q, want %q", el.Tag, tt.wantTag)
			}
			if el.Role != tt.wantRole {
				t.Errorf("role: got %q, want %q", el.Role, tt.wantRole)
			}
			if absFloat(el.FontSize-tt.wantFont) > 1e-9 {
				t.Errorf("font size: got %f, want %f", el.FontSize, tt.wantFont)
			}
		})
	}
}

func TestElementFor_Origin(t *testing.T) {
	el := elementFor(Block{Bounds: image.Rect(60, 50, 80, 70), Kind: KindText}, image.Pt(50, 40), 1)
	if el.X != 10 || el.Y != 10 || el.Width != 20 || el.Height != 20 {
		t.Errorf("got %+v, want origin-relative box at (10,10) 20x20", el)
	}
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
