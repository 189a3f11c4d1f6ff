// Package render sequences one heatmap request end to end.
//
// An Engine validates the request, acquires a screenshot through the
// provider chain, decodes it, and then either maps recorded points onto it
// (mode "data") or detects hotspots and expands them into point clouds
// (mode "ai"). The points flow through accumulate, blur, colorize and
// composite, optionally get hotspot outlines drawn on top, and are encoded
// as PNG or JPEG alongside a Metadata record.
//
// # Failure policy
//
// Screenshot and detection trouble degrades instead of failing: a gray
// placeholder stands in for an unreachable page (Metadata.Degraded) and the
// heuristic detector stands in for the model (Metadata.Fallback). Invalid
// input, undecodable screenshots and raster failures return an *Error whose
// Kind and Phase name what went wrong. Raster phases recover panics.
//
// # Timings
//
// Every phase is timed into Metadata.TimingsMs and, when a recorder is
// configured, the heatmap_phase_duration_seconds histogram.
package render
