// Package detection finds content blocks in a page screenshot when no DOM is
// available to score.
//
// # Algorithm Overview
//
//  1. Edge Detection: grayscale gradient threshold against the right and
//     lower neighbors
//  2. Window Scan: sliding windows at several sizes, counted in O(1) with a
//     summed-area table
//  3. Classification: medium edge density with mostly horizontal runs is
//     text; denser windows are graphics
//  4. Merging: overlapping windows of one kind are merged into their union
//
// Each block also carries its mean color and saturation so compact, strongly
// colored text blocks can be treated as buttons.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// These heuristics work best on clean, high-contrast renders. Photographs
// full of texture are reported as graphics; low-contrast text may be missed.
package detection
