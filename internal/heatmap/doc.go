// Package heatmap implements the raster half of the attention heatmap engine.
//
// A render flows through five pure stages:
//
//	ToPixels / ExpandRegions -> Accumulate -> Blur -> Colorize -> Composite
//
// ToPixels maps normalized interaction points onto the screenshot.
// ExpandRegions turns normalized hotspot rectangles into weighted point
// clouds. Accumulate deposits each point into a float intensity Buffer with a
// linear falloff kernel. Blur smooths the buffer with a separable box filter
// whose divisor shrinks at the image edges. Colorize maps intensity through a
// color ramp after percentile clipping. Composite blends the colored raster
// over the screenshot in normal or additive mode, downscaling both when the
// output would exceed a pixel bound.
//
// # Determinism
//
// Every stage is deterministic. ExpandRegions takes an explicit seed, and Blur
// and Colorize produce identical output for any worker count.
//
// # Concurrency
//
// Buffers are owned by a single render and never shared. Blur and Colorize
// split their work into row bands across goroutines; a panic inside a band is
// recovered and returned as an error so callers can tag the failing phase.
package heatmap
