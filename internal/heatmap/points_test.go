package heatmap

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestToPixels(t *testing.T) {
	tests := []struct {
		name   string
		point  NormalizedPoint
		wantX  int
		wantY  int
	}{
		{"origin", NormalizedPoint{X: 0, Y: 0}, 0, 0},
		{"far corner", NormalizedPoint{X: 1, Y: 1}, 99, 49},
		{"center", NormalizedPoint{X: 0.5, Y: 0.5}, 50, 25},
		{"nan becomes zero", NormalizedPoint{X: math.NaN(), Y: 0.5}, 0, 25},
		{"inf becomes zero", NormalizedPoint{X: 0.5, Y: math.Inf(1)}, 50, 0},
		{"above range clamps", NormalizedPoint{X: 3, Y: -2}, 99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPixels([]NormalizedPoint{tt.point}, 100, 50, 0)
			if len(got) != 1 {
				t.Fatalf("got %d points, want 1", len(got))
			}
			if got[0].X != tt.wantX || got[0].Y != tt.wantY {
				t.Errorf("got (%d,%d), want (%d,%d)", got[0].X, got[0].Y, tt.wantX, tt.wantY)
			}
			if got[0].Weight != 1 {
				t.Errorf("weight: got %f, want 1", got[0].Weight)
			}
		})
	}
}

func TestToPixels_RoundTrip(t *testing.T) {
	width, height := 1440, 900

	for i := 0; i <= 100; i++ {
		for j := 0; j <= 100; j += 7 {
			x := float64(i) / 100
			y := float64(j) / 100
			p := ToPixels([]NormalizedPoint{{X: x, Y: y}}, width, height, 0)[0]

			backX := float64(p.X) / float64(width-1)
			backY := float64(p.Y) / float64(height-1)
			if math.Abs(backX-x)*float64(width-1) > 1 {
				t.Fatalf("x=%v: round trip %v off by more than a pixel", x, backX)
			}
			if math.Abs(backY-y)*float64(height-1) > 1 {
				t.Fatalf("y=%v: round trip %v off by more than a pixel", y, backY)
			}
		}
	}
}

func TestToPixels_Scroll(t *testing.T) {
	// A 3000px page seen through a 900px viewport: 2100px scrollable.
	points := []NormalizedPoint{
		{X: 0.5, Y: 0.5, ScrollY: fptr(0)},
		{X: 0.5, Y: 0.5, ScrollY: fptr(1)},
		{X: 0.5, Y: 0.0, ScrollY: fptr(0.5)},
	}
	got := ToPixels(points, 1000, 3000, 900)

	wantY := []int{450, 2550, 1050}
	for i, want := range wantY {
		if got[i].Y != want {
			t.Errorf("point %d: got y=%d, want %d", i, got[i].Y, want)
		}
	}
}

func TestToPixels_ScrollWithoutScrollableDistance(t *testing.T) {
	got := ToPixels([]NormalizedPoint{{X: 0, Y: 1, ScrollY: fptr(1)}}, 100, 100, 100)
	if got[0].Y != 99 {
		t.Errorf("got y=%d, want 99 (clamped to image)", got[0].Y)
	}
}

func TestToPixels_EmptyAndInvalid(t *testing.T) {
	if got := ToPixels(nil, 10, 10, 0); len(got) != 0 {
		t.Errorf("empty input: got %d points", len(got))
	}
	if got := ToPixels([]NormalizedPoint{{X: 0.5, Y: 0.5}}, 0, 10, 0); got != nil {
		t.Errorf("zero width: got %v, want nil", got)
	}
}
