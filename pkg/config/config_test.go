package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so tests do not pick up
// the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "NODE_ENV", "MCP_D1_DATABASE_URL", "MCP_AUTH_KEY",
		"GITHUB_MCP_URL", "GITHUB_AUTH_KEY", "LIBRECHAT_URL", "ALLOWED_ORIGINS",
		"VOYGEN_SERVER_LISTEN_ADDRESS", "VOYGEN_SERVER_ENVIRONMENT",
		"VOYGEN_UPSTREAMS_DATA_URL", "VOYGEN_UPSTREAMS_DATA_TRANSPORT",
		"VOYGEN_TELEMETRY_LOGGING_LEVEL", "VOYGEN_JOURNAL_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voygen.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.MaxBodyBytes != 10<<20 {
		t.Errorf("MaxBodyBytes = %d, want 10MB", cfg.Server.MaxBodyBytes)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0", cfg.Server.WriteTimeout)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("CORS should be enabled by default")
	}
	if cfg.Upstreams.Data.CallPath != "/mcp/call" || cfg.Upstreams.Data.Transport != TransportRPC {
		t.Errorf("data upstream defaults = %+v", cfg.Upstreams.Data)
	}
	if got := cfg.Chat.ProxyPrefixes; len(got) != 2 || got[0] != "/api" || got[1] != "/oauth" {
		t.Errorf("ProxyPrefixes = %v", got)
	}
	if cfg.Chat.Backend.Port != 3080 {
		t.Errorf("Backend.Port = %d, want 3080", cfg.Chat.Backend.Port)
	}
	if !cfg.Telemetry.Logging.Redact || !cfg.Telemetry.Metrics.Enabled {
		t.Error("redaction and metrics should default to enabled")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_PreservesTrueDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9000"
telemetry:
  logging:
    level: debug
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("CORS.Enabled should survive a file that does not mention it")
	}
	if !cfg.Telemetry.Logging.Redact {
		t.Error("Logging.Redact should survive a partial logging section")
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
server:
  cors:
    enabled: false
telemetry:
  metrics:
    enabled: false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.CORS.Enabled {
		t.Error("CORS.Enabled should be false")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)

	t.Run("explicit path", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("expected error for missing explicit file")
		}
	})

	t.Run("default path", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := LoadConfigWithEnvOverrides(DefaultConfigPath)
		if err != nil {
			t.Fatalf("missing default file should not fail: %v", err)
		}
		if cfg.Server.ListenAddress != DefaultListenAddress {
			t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
		}
	})
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigWithEnvOverrides_DeploymentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8787")
	t.Setenv("NODE_ENV", "development")
	t.Setenv("MCP_D1_DATABASE_URL", "https://d1.example.com")
	t.Setenv("MCP_AUTH_KEY", "data-key")
	t.Setenv("GITHUB_MCP_URL", "https://gh.example.com")
	t.Setenv("GITHUB_AUTH_KEY", "gh-key")
	t.Setenv("LIBRECHAT_URL", "http://chat.internal:3080")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8787" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if !cfg.Server.IsDevelopment() {
		t.Error("expected development environment")
	}
	if cfg.Upstreams.Data.URL != "https://d1.example.com" || cfg.Upstreams.Data.AuthToken != "data-key" {
		t.Errorf("data upstream = %+v", cfg.Upstreams.Data)
	}
	if cfg.Upstreams.Publish.URL != "https://gh.example.com" || cfg.Upstreams.Publish.AuthToken != "gh-key" {
		t.Errorf("publish upstream = %+v", cfg.Upstreams.Publish)
	}
	if !cfg.Chat.Enabled || cfg.Chat.UpstreamURL != "http://chat.internal:3080" || cfg.Chat.IsLocal() {
		t.Errorf("chat = %+v", cfg.Chat)
	}
	origins := cfg.Server.CORS.AllowedOrigins
	if len(origins) != 2 || origins[1] != "https://b.example.com" {
		t.Errorf("AllowedOrigins = %v", origins)
	}
	if !cfg.Server.CORS.AllowCredentials {
		t.Error("ALLOWED_ORIGINS should allow credentials")
	}
}

func TestLoadConfigWithEnvOverrides_VoygenVariablesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8787")
	t.Setenv("VOYGEN_SERVER_LISTEN_ADDRESS", "127.0.0.1:9999")
	t.Setenv("MCP_D1_DATABASE_URL", "https://d1.example.com")
	t.Setenv("VOYGEN_UPSTREAMS_DATA_TRANSPORT", "streamable-http")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Upstreams.Data.Transport != TransportStreamableHTTP {
		t.Errorf("Transport = %q", cfg.Upstreams.Data.Transport)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "3000" }, "server.listen_address"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }, "server.max_body_bytes"},
		{"relative upstream url", func(c *Config) { c.Upstreams.Data.URL = "d1.example.com" }, "upstreams.data.url"},
		{"unknown transport", func(c *Config) { c.Upstreams.Publish.Transport = "grpc" }, "upstreams.publish.transport"},
		{"call path without slash", func(c *Config) { c.Upstreams.Data.CallPath = "mcp/call" }, "upstreams.data.call_path"},
		{"root proxy prefix", func(c *Config) {
			c.Chat.Enabled = true
			c.Chat.ProxyPrefixes = []string{"/"}
		}, "chat.proxy_prefixes[0]"},
		{"bad cron", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Retention.Schedule = "every day"
		}, "journal.retention.schedule"},
		{"unknown journal backend", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Backend = "postgres"
		}, "journal.backend"},
		{"unknown log level", func(c *Config) { c.Telemetry.Logging.Level = "loud" }, "telemetry.logging.level"},
		{"wildcard with credentials", func(c *Config) { c.Server.CORS.AllowCredentials = true }, "server.cors.allowed_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidationError_Multiple(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ListenAddress = ""
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "with 2 errors") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("MCP_AUTH_KEY=from-file\nNODE_ENV=development\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("MCP_AUTH_KEY")
	os.Unsetenv("NODE_ENV")
	t.Setenv("GITHUB_AUTH_KEY", "already-set")

	if err := LoadDotEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MCP_AUTH_KEY"); got != "from-file" {
		t.Errorf("MCP_AUTH_KEY = %q", got)
	}
	if got := os.Getenv("GITHUB_AUTH_KEY"); got != "already-set" {
		t.Errorf("GITHUB_AUTH_KEY = %q, existing values must win", got)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "telemetry:\n  logging:\n    level: info\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func(c *Config) { reloaded <- c })

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("telemetry:\n  logging:\n    level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Telemetry.Logging.Level != "debug" {
			t.Errorf("Level = %q, want debug", cfg.Telemetry.Logging.Level)
		}
		if GetConfig() != cfg {
			t.Error("reloaded configuration was not installed globally")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestReloadConfig(t *testing.T) {
	clearEnv(t)
	t.Cleanup(func() { SetConfig(nil) })

	path := writeConfig(t, "server:\n  environment: development\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	first := GetConfig()
	if first == nil || !first.Server.IsDevelopment() {
		t.Fatalf("GetConfig() = %+v, want development config", first)
	}

	if err := os.WriteFile(path, []byte("upstreams:\n  data:\n    transport: carrier-pigeon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(path); err == nil {
		t.Fatal("ReloadConfig() expected validation error")
	}
	if GetConfig() != first {
		t.Error("failed reload must keep the previous configuration")
	}
}
