package hotspot

import (
	"math"
	"sort"
)

const (
	// ParityMinConfidence is the confidence floor applied in parity mode.
	ParityMinConfidence = 0.25

	DefaultMaxHotspots  = 8
	DefaultIoUThreshold = 0.4
)

// SanitizeResult holds the candidates that survived Sanitize.
type SanitizeResult struct {
	Kept    []Hotspot
	Dropped int
}

// Sanitize validates and clamps candidates.
//
// Candidates with any non-finite number or a non-positive width or height
// are dropped. The rest have every field clamped into [0,1]. A rectangle
// that overflows the unit square is trimmed at the far edge; one that starts
// at or past the far edge keeps its size and is moved inside. With parity
// set, candidates below ParityMinConfidence are dropped too. Input order is
// preserved.
func Sanitize(candidates []Hotspot, parity bool) SanitizeResult {
	res := SanitizeResult{Kept: make([]Hotspot, 0, len(candidates))}

	for _, c := range candidates {
		if !finite(c.X, c.Y, c.Width, c.Height, c.Confidence) || c.Width <= 0 || c.Height <= 0 {
			res.Dropped++
			continue
		}

		c.X, c.Width = clampSpan(c.X, c.Width)
		c.Y, c.Height = clampSpan(c.Y, c.Height)
		c.Confidence = clamp01(c.Confidence)
		if parity && c.Confidence < ParityMinConfidence {
			res.Dropped++
			continue
		}

		c.Category = ParseCategory(string(c.Category))
		res.Kept = append(res.Kept, c)
	}
	return res
}

// Deoverlap greedily selects a confidence-ranked subset in which every pair
// has IoU below iouThreshold, stopping at maxCount. Ties keep input order.
func Deoverlap(candidates []Hotspot, maxCount int, iouThreshold float64) []Hotspot {
	if maxCount <= 0 || len(candidates) == 0 {
		return []Hotspot{}
	}

	sorted := make([]Hotspot, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Hotspot, 0, maxCount)
	for _, c := range sorted {
		overlaps := false
		for _, k := range kept {
			if IoU(c, k) >= iouThreshold {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		kept = append(kept, c)
		if len(kept) == maxCount {
			break
		}
	}
	return kept
}

// Refine runs Sanitize then Deoverlap with the default limits. The count is
// every candidate that did not make it into the result.
func Refine(candidates []Hotspot, parity bool) ([]Hotspot, int) {
	s := Sanitize(candidates, parity)
	kept := Deoverlap(s.Kept, DefaultMaxHotspots, DefaultIoUThreshold)
	return kept, len(candidates) - len(kept)
}

// IoU is the intersection area over the union area of two rectangles, 0
// when they do not overlap.
func IoU(a, b Hotspot) float64 {
	inter := intersection(a, b)
	if inter <= 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// OverlapRatio is the intersection area over the smaller of the two areas.
func OverlapRatio(a, b Hotspot) float64 {
	inter := intersection(a, b)
	if inter <= 0 {
		return 0
	}
	smaller := math.Min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0
	}
	return inter / smaller
}

func intersection(a, b Hotspot) float64 {
	w := math.Min(a.X+a.Width, b.X+b.Width) - math.Max(a.X, b.X)
	h := math.Min(a.Y+a.Height, b.Y+b.Height) - math.Max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// clampSpan fits [pos, pos+size] into [0,1]. size must be positive.
func clampSpan(pos, size float64) (float64, float64) {
	pos = clamp01(pos)
	size = clamp01(size)
	if pos+size <= 1 {
		return pos, size
	}
	if pos < 1 {
		return pos, 1 - pos
	}
	return 1 - size, size
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
