// Package imaging provides the image plumbing around the heatmap raster
// pipeline: screenshot decoding and dimension extraction, heat color ramps,
// PNG/JPEG encoding and resizing, and hotspot outline drawing.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// # Thread Safety
//
// Every function is stateless and safe to call concurrently on different
// images. Ramps are immutable after package initialization.
//
// # Error Handling
//
// Decode and Dimensions wrap ErrUndecodable for anything that is not a
// PNG, JPEG, GIF or WebP image with a non-zero size. Callers use errors.Is
// to tell decoding failures from I/O failures.
package imaging
