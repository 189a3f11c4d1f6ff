package server

import (
	"encoding/json"
	"testing"

	"github.com/ironsheep/attention-heatmap-mcp/internal/render"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not defined", name)
	return Tool{}
}

func propertiesOf(t *testing.T, tool Tool) map[string]interface{} {
	t.Helper()
	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("%s: properties is %T", tool.Name, tool.InputSchema["properties"])
	}
	return props
}

func TestGetToolDefinitions(t *testing.T) {
	want := []string{"heatmap_render", "hotspot_detect", "heatmap_cache_stats"}

	tools := GetToolDefinitions()
	if len(tools) != len(want) {
		t.Fatalf("tool count: got %d, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
		}
	}
}

func TestToolDefinitions_Schemas(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("schema type: got %v, want object", tool.InputSchema["type"])
			}
			propertiesOf(t, tool)

			// Clients receive the schema as JSON.
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("schema does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_RequiredURL(t *testing.T) {
	for _, name := range []string{"heatmap_render", "hotspot_detect"} {
		required, ok := toolByName(t, name).InputSchema["required"].([]string)
		if !ok || len(required) != 1 || required[0] != "url" {
			t.Errorf("%s: required got %v, want [url]", name, required)
		}
	}

	if _, ok := toolByName(t, "heatmap_cache_stats").InputSchema["required"]; ok {
		t.Error("heatmap_cache_stats should take no required arguments")
	}
}

func TestToolDefinitions_RenderEnums(t *testing.T) {
	props := propertiesOf(t, toolByName(t, "heatmap_render"))

	enums := map[string][]string{
		"device": {"desktop", "tablet", "mobile"},
		"mode":   {"data", "ai"},
	}
	for name, want := range enums {
		prop, _ := props[name].(map[string]interface{})
		got, _ := prop["enum"].([]string)
		if len(got) != len(want) {
			t.Errorf("%s enum: got %v, want %v", name, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s enum[%d]: got %s, want %s", name, i, got[i], want[i])
			}
		}
	}

	points, _ := props["points"].(map[string]interface{})
	if points["maxItems"] != render.MaxPoints {
		t.Errorf("points.maxItems: got %v, want %d", points["maxItems"], render.MaxPoints)
	}
	for _, name := range []string{"knobs", "show_hotspots", "output_path"} {
		if _, ok := props[name]; !ok {
			t.Errorf("heatmap_render is missing %s", name)
		}
	}
}

func TestToolDefinitions_Defaults(t *testing.T) {
	defaults := map[string]map[string]interface{}{
		"heatmap_render": {"device": "desktop", "parity": false, "full_page": false, "show_hotspots": false},
		"hotspot_detect": {"device": "desktop", "parity": false},
	}

	for toolName, want := range defaults {
		props := propertiesOf(t, toolByName(t, toolName))
		for param, def := range want {
			prop, ok := props[param].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: not defined", toolName, param)
				continue
			}
			if prop["default"] != def {
				t.Errorf("%s.%s: default got %v, want %v", toolName, param, prop["default"], def)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	resp := newTestServer().handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result: got %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools: got %T", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(GetToolDefinitions()))
	}
}
