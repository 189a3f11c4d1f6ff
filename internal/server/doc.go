// Package server implements the MCP (Model Context Protocol) server for the
// attention heatmap engine.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs never go to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - heatmap_render: Render a heatmap from points (data) or predicted hotspots (ai)
//   - hotspot_detect: Return sanitized, de-overlapped hotspots for a page
//   - heatmap_cache_stats: Report hotspot cache counters
//
// heatmap_render returns an image content item (base64 PNG or JPEG) followed
// by a text item with the JSON metadata. With output_path the image is
// written to disk and only the metadata is returned.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid input, -32000 for every other failure
//   - message: "Invalid params" or "Tool execution failed"
//   - data: {kind, phase, message}, where kind is the render error kind
//
// Screenshot and model outages do not fail a call; they are reported through
// the degraded and fallback metadata flags instead.
//
// # Usage
//
//	srv := server.New(engine, cache, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
