package heatmap

import "fmt"

// Buffer is a dense row-major grid of non-negative intensities.
type Buffer struct {
	Width  int
	Height int
	Data   []float64
}

// NewBuffer allocates a zeroed width x height buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	return &Buffer{Width: width, Height: height, Data: make([]float64, width*height)}, nil
}

// At returns the value at (x, y).
func (b *Buffer) At(x, y int) float64 {
	return b.Data[y*b.Width+x]
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	data := make([]float64, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Width: b.Width, Height: b.Height, Data: data}
}

// Stats scans the buffer for its maximum and the number of positive cells.
func (b *Buffer) Stats() Stats {
	var s Stats
	for _, v := range b.Data {
		if v > 0 {
			s.NonZeroCount++
			if v > s.MaxValue {
				s.MaxValue = v
			}
		}
	}
	return s
}

// Stats summarizes a buffer for normalization and diagnostics.
type Stats struct {
	MaxValue     float64 `json:"max_value"`
	NonZeroCount int     `json:"non_zero_count"`
}
