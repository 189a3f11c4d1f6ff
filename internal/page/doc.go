// Package page models what the engine knows about a rendered web page beyond
// its pixels: positioned DOM elements reported by the in-process renderer, and
// a compact text summary of the HTML used to ground hotspot detection.
//
// HTML is summarized with goquery. When the renderer cannot provide HTML, the
// Fetcher retrieves it with a retrying HTTP client; fetching is best effort
// and never fails a render.
package page
