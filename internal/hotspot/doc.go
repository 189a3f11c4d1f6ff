// Package hotspot finds the regions of a page most likely to draw attention.
//
// Two Detector strategies emit the same Hotspot shape: a model-assisted
// detector that asks an OpenAI-compatible vision endpoint for 5-8 labelled
// regions, and a deterministic heuristic that scores DOM elements (or visual
// blocks found in the screenshot when no DOM is available). WithFallback
// composes them so detection degrades instead of failing.
//
// Every candidate set passes through Sanitize and Deoverlap, which own all
// clamping and validation. Service adds a TTL cache keyed by url, device,
// parity flag and prompt signature, with concurrent misses for one key
// coalesced into a single detector call.
package hotspot
