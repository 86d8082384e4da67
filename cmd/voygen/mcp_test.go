package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to object", raw: "", want: "{}"},
		{name: "object kept verbatim", raw: `{"trip_id": 42}`, want: `{"trip_id": 42}`},
		{name: "array rejected", raw: `[1,2]`, wantErr: true},
		{name: "null rejected", raw: `null`, wantErr: true},
		{name: "invalid json", raw: `{trip_id}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseParams(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseParams(%q) error: %v", tt.raw, err)
			}
			if string(got) != tt.want {
				t.Errorf("parseParams(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCallMCP(t *testing.T) {
	var gotBody map[string]json.RawMessage
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp/call" {
			t.Errorf("path = %s, want /mcp/call", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"templates":["standard","luxury"],"note":"<b>"}`))
	}))
	defer upstream.Close()

	t.Setenv("MCP_D1_DATABASE_URL", upstream.URL)

	dir := t.TempDir()
	path := filepath.Join(dir, "voygen.yaml")
	if err := os.WriteFile(path, []byte("telemetry:\n  logging:\n    level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	origCfg, origFlags := cfgFile, mcpFlags
	defer func() { cfgFile, mcpFlags = origCfg, origFlags }()
	cfgFile = path
	mcpFlags.upstream = "data"
	mcpFlags.params = `{"category":"proposal"}`

	var out bytes.Buffer
	mcpCallCmd.SetOut(&out)
	mcpCallCmd.SetContext(context.Background())
	defer mcpCallCmd.SetOut(nil)

	if err := callMCP(mcpCallCmd, []string{"list_templates"}); err != nil {
		t.Fatalf("callMCP() error: %v", err)
	}

	if string(gotBody["method"]) != `"list_templates"` {
		t.Errorf("method = %s", gotBody["method"])
	}
	if string(gotBody["params"]) != `{"category":"proposal"}` {
		t.Errorf("params = %s", gotBody["params"])
	}
	if !strings.Contains(out.String(), `"<b>"`) {
		t.Errorf("output should keep upstream JSON unescaped:\n%s", out.String())
	}
}

func TestCallMCPUnconfigured(t *testing.T) {
	t.Setenv("GITHUB_MCP_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "voygen.yaml")
	if err := os.WriteFile(path, []byte("upstreams:\n  publish:\n    url: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	origCfg, origFlags := cfgFile, mcpFlags
	defer func() { cfgFile, mcpFlags = origCfg, origFlags }()
	cfgFile = path
	mcpFlags.upstream = "publish"
	mcpFlags.params = "{}"

	mcpCallCmd.SetContext(context.Background())
	err := callMCP(mcpCallCmd, []string{"list_documents"})
	if err == nil {
		t.Fatal("expected error for unconfigured upstream")
	}
	if !strings.Contains(err.Error(), "GITHUB_MCP_URL not configured") {
		t.Errorf("error = %v", err)
	}
}
