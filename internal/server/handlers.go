package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/attention-heatmap-mcp/internal/hotspot"
	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "heatmap_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Content is one item of a tool result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ErrorData is the data member of tool error responses.
type ErrorData struct {
	Kind    string `json:"kind"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message"`
}

// errInvalidArgs marks argument problems found before reaching the engine.
var errInvalidArgs = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "image", ...}, {"type": "text", "text": "<JSON metadata>"}]
//	}
//
// Invalid input returns code -32602; every other failure returns -32000.
// Both carry ErrorData naming the failing phase.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", ErrorData{
			Kind:    string(render.KindInputInvalid),
			Message: err.Error(),
		})
	}

	content, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", logging.String("tool", params.Name), logging.Err(err))
		return s.toolError(req.ID, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) ([]Content, error) {
	switch name {
	case "heatmap_render":
		return s.handleHeatmapRender(ctx, args)
	case "hotspot_detect":
		return s.handleHotspotDetect(ctx, args)
	case "heatmap_cache_stats":
		return s.handleCacheStats()
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// toolError maps a tool failure onto a JSON-RPC error response.
func (s *Server) toolError(id interface{}, err error) *MCPResponse {
	var re *render.Error
	switch {
	case errors.As(err, &re):
		code, msg := -32000, "Tool execution failed"
		if re.Kind == render.KindInputInvalid {
			code, msg = -32602, "Invalid params"
		}
		return s.errorResponse(id, code, msg, ErrorData{Kind: string(re.Kind), Phase: re.Phase, Message: re.Message})
	case errors.Is(err, errInvalidArgs):
		return s.errorResponse(id, -32602, "Invalid params", ErrorData{
			Kind:    string(render.KindInputInvalid),
			Message: err.Error(),
		})
	default:
		return s.errorResponse(id, -32000, "Tool execution failed", ErrorData{Kind: "Internal", Message: err.Error()})
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Heatmap Handlers ===

type heatmapRenderArgs struct {
	render.Request

	// OutputPath, when set, receives the image instead of the response.
	OutputPath string `json:"output_path"`
}

type renderOutput struct {
	render.Metadata
	OutputPath string `json:"output_path,omitempty"`
	Bytes      int    `json:"bytes,omitempty"`
}

func (s *Server) handleHeatmapRender(ctx context.Context, args json.RawMessage) ([]Content, error) {
	var a heatmapRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := s.engine.Render(ctx, a.Request)
	if err != nil {
		return nil, err
	}

	out := renderOutput{Metadata: res.Metadata}
	if a.OutputPath != "" {
		path := filepath.Clean(a.OutputPath)
		if err := os.WriteFile(path, res.Image.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		out.OutputPath = path
		out.Bytes = len(res.Image.Data)
		return []Content{{Type: "text", Text: mustMarshalJSON(out)}}, nil
	}

	return []Content{
		{Type: "image", Data: res.Image.Base64(), MimeType: res.Image.MimeType},
		{Type: "text", Text: mustMarshalJSON(out)},
	}, nil
}

func (s *Server) handleHotspotDetect(ctx context.Context, args json.RawMessage) ([]Content, error) {
	var a render.DetectRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	d, err := s.engine.Detect(ctx, a)
	if err != nil {
		return nil, err
	}
	return []Content{{Type: "text", Text: mustMarshalJSON(d)}}, nil
}

func (s *Server) handleCacheStats() ([]Content, error) {
	var stats hotspot.CacheStats
	if s.cache != nil {
		stats = s.cache.Stats()
	}
	return []Content{{Type: "text", Text: mustMarshalJSON(stats)}}, nil
}
