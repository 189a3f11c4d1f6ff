package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(&fakeEngine{}, nil, nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.logger == nil {
		t.Fatal("New() did not default the logger")
	}
}

func TestHandleRequest_Methods(t *testing.T) {
	tests := []struct {
		method   string
		id       interface{}
		wantNil  bool
		wantCode int
	}{
		{method: "initialize", id: 1},
		{method: "ping", id: "ping-1"},
		{method: "tools/list", id: 7},
		{method: "notifications/initialized", wantNil: true},
		{method: "resources/list", id: 2, wantCode: -32601},
		{method: "nonexistent/method", id: 3, wantCode: -32601},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: tt.id, Method: tt.method})

			if tt.wantNil {
				if resp != nil {
					t.Errorf("%s: expected no response, got %+v", tt.method, resp)
				}
				return
			}
			if resp == nil {
				t.Fatalf("%s: no response", tt.method)
			}
			if resp.ID != tt.id {
				t.Errorf("ID: got %v, want %v", resp.ID, tt.id)
			}
			if resp.JSONRPC != "2.0" {
				t.Errorf("JSONRPC: got %s", resp.JSONRPC)
			}

			switch {
			case tt.wantCode == 0 && resp.Error != nil:
				t.Errorf("unexpected error: %+v", resp.Error)
			case tt.wantCode != 0 && resp.Error == nil:
				t.Errorf("expected error %d, got result %v", tt.wantCode, resp.Result)
			case tt.wantCode != 0 && resp.Error.Code != tt.wantCode:
				t.Errorf("error code: got %d, want %d", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleRequest_ToolsListCount(t *testing.T) {
	resp := newTestServer().handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result: got %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools: got %T", result["tools"])
	}
	if len(tools) != 3 {
		t.Errorf("tool count: got %d, want 3", len(tools))
	}
}

func TestHandleInitialize_ServerInfo(t *testing.T) {
	resp := newTestServer().handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: "init-1"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result: got %T", resp.Result)
	}
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion: got %v, want %s", result["protocolVersion"], protocolVersion)
	}

	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatalf("serverInfo: got %T", result["serverInfo"])
	}
	if info["name"] != "attention-heatmap-mcp" {
		t.Errorf("name: got %v", info["name"])
	}
	if info["version"] != Version {
		t.Errorf("version: got %v, want %s", info["version"], Version)
	}

	caps, ok := result["capabilities"].(map[string]interface{})
	if !ok {
		t.Fatalf("capabilities: got %T", result["capabilities"])
	}
	if _, ok := caps["tools"]; !ok {
		t.Error("capabilities should advertise tools")
	}
}

func TestServe(t *testing.T) {
	s := newTestServer()
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"heatmap_cache_stats","arguments":{}}}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), out.String())
	}

	var parseErr MCPResponse
	if err := json.Unmarshal([]byte(lines[2]), &parseErr); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if parseErr.Error == nil || parseErr.Error.Code != -32700 {
		t.Errorf("expected parse error -32700, got %+v", parseErr.Error)
	}

	var stats MCPResponse
	if err := json.Unmarshal([]byte(lines[3]), &stats); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if stats.Error != nil {
		t.Errorf("cache stats failed: %+v", stats.Error)
	}
	if stats.ID != float64(3) {
		t.Errorf("ID: got %v, want 3", stats.ID)
	}
}

func TestServe_CanceledContext(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}
