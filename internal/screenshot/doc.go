// Package screenshot acquires page screenshots at a device viewport.
//
// Providers are tried in priority order by a Chain: the in-process
// playwright Renderer first, then hosted screenshot services. Each provider
// gets a bounded number of attempts with a constant backoff, and a reply too
// small to be a real screenshot counts as a failure. When every provider
// fails, AcquireOrPlaceholder returns a neutral gray image flagged as
// degraded instead of an error.
//
// File serves a saved image and stands in for the whole chain when a
// capture already exists.
package screenshot
