package server

import (
	"github.com/ironsheep/attention-heatmap-mcp/internal/render"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var deviceProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"desktop", "tablet", "mobile"},
	"description": "Device class: desktop 1440x900, tablet 768x1024, mobile 390x844",
	"default":     "desktop",
}

var urlProperty = map[string]interface{}{
	"type":        "string",
	"description": "Public http or https URL of the page",
}

var parityProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Drop hotspots with confidence below 0.25 before de-overlap",
	"default":     false,
}

var fullPageProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Capture the whole scrollable page instead of the first viewport",
	"default":     false,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "heatmap_render",
			Description: "Render an attention heatmap over a screenshot of a web page. Mode 'data' plots recorded " +
				"interaction points; mode 'ai' predicts focal regions and renders them. Returns the image and a JSON metadata record.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url":    urlProperty,
					"device": deviceProperty,
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"data", "ai"},
						"description": "Heat source. Defaults to data when points are given, ai otherwise",
					},
					"points": map[string]interface{}{
						"type":        "array",
						"maxItems":    render.MaxPoints,
						"description": "Normalized interaction points for data mode",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":       map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
								"y":       map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
								"scrollY": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
								"kind":    map[string]interface{}{"type": "string", "enum": []string{"click", "movement"}},
							},
							"required": []string{"x", "y"},
						},
					},
					"knobs": map[string]interface{}{
						"type":        "object",
						"description": "Optional render tuning; out-of-range values are clamped",
						"properties": map[string]interface{}{
							"alpha":           map[string]interface{}{"type": "number", "default": 0.6},
							"blendMode":       map[string]interface{}{"type": "string", "enum": []string{"normal", "additive"}},
							"ramp":            map[string]interface{}{"type": "string", "enum": []string{"classic", "soft"}, "default": "classic"},
							"clipLowPercent":  map[string]interface{}{"type": "number", "default": 0.0},
							"clipHighPercent": map[string]interface{}{"type": "number", "default": 99.0},
							"kernelRadiusPx":  map[string]interface{}{"type": "number", "default": 40},
							"kernelSigmaPx":   map[string]interface{}{"type": "number", "default": 12.0},
						},
					},
					"parity":    parityProperty,
					"full_page": fullPageProperty,
					"show_hotspots": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline and number each hotspot on the output (ai mode)",
						"default":     false,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file path; when set the image is written there and only metadata is returned",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "hotspot_detect",
			Description: "Predict the regions of a web page that draw attention first. Returns up to 8 non-overlapping normalized rectangles with category, confidence and reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url":       urlProperty,
					"device":    deviceProperty,
					"parity":    parityProperty,
					"full_page": fullPageProperty,
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "heatmap_cache_stats",
			Description: "Report hotspot cache entries, hits and misses.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
