package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the configuration file used when none is given.
// Unlike an explicit path, it may be absent: the gateway is usually
// configured through the environment alone.
const DefaultConfigPath = "voygen.yaml"

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) into the process environment. Variables that are already set are
// left untouched and missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of DefaultConfig, defaults are applied to any
// remaining zero values, and the result is validated. Environment variables
// are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides.
//
// The loading sequence is:
// 1. Load YAML from file on top of defaults
// 2. Apply deployment variables (PORT, NODE_ENV, MCP_D1_DATABASE_URL, ...)
// 3. Apply VOYGEN_SECTION_FIELD overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func readConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. The variable names used by existing deployments are read
// first so that the VOYGEN_* names can override them.
func applyEnvOverrides(cfg *Config) {
	applyDeploymentEnv(cfg)

	// Server overrides
	envString("VOYGEN_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envString("VOYGEN_SERVER_ENVIRONMENT", &cfg.Server.Environment)
	envDuration("VOYGEN_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("VOYGEN_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("VOYGEN_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("VOYGEN_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envInt64("VOYGEN_SERVER_MAX_BODY_BYTES", &cfg.Server.MaxBodyBytes)
	envList("VOYGEN_SERVER_CORS_ALLOWED_ORIGINS", &cfg.Server.CORS.AllowedOrigins)
	envBool("VOYGEN_SERVER_CORS_ALLOW_CREDENTIALS", &cfg.Server.CORS.AllowCredentials)

	// Upstream overrides
	applyUpstreamEnv("DATA", &cfg.Upstreams.Data)
	applyUpstreamEnv("PUBLISH", &cfg.Upstreams.Publish)

	// Chat overrides
	envBool("VOYGEN_CHAT_ENABLED", &cfg.Chat.Enabled)
	envString("VOYGEN_CHAT_UPSTREAM_URL", &cfg.Chat.UpstreamURL)
	envString("VOYGEN_CHAT_STATIC_DIR", &cfg.Chat.StaticDir)
	envString("VOYGEN_CHAT_COOKIE_DOMAIN", &cfg.Chat.CookieDomain)
	envString("VOYGEN_CHAT_BACKEND_COMMAND", &cfg.Chat.Backend.Command)
	envString("VOYGEN_CHAT_BACKEND_DIR", &cfg.Chat.Backend.Dir)

	// Journal overrides
	envBool("VOYGEN_JOURNAL_ENABLED", &cfg.Journal.Enabled)
	envString("VOYGEN_JOURNAL_BACKEND", &cfg.Journal.Backend)
	envString("VOYGEN_JOURNAL_SQLITE_PATH", &cfg.Journal.SQLite.Path)
	envInt("VOYGEN_JOURNAL_RETENTION_DAYS", &cfg.Journal.Retention.Days)
	envString("VOYGEN_JOURNAL_RETENTION_SCHEDULE", &cfg.Journal.Retention.Schedule)

	// Telemetry overrides
	envString("VOYGEN_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("VOYGEN_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("VOYGEN_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
}

// applyDeploymentEnv maps the variable names the gateway has always been
// deployed with.
func applyDeploymentEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.ListenAddress = net.JoinHostPort("0.0.0.0", port)
	}
	envString("NODE_ENV", &cfg.Server.Environment)

	envString("MCP_D1_DATABASE_URL", &cfg.Upstreams.Data.URL)
	envString("MCP_AUTH_KEY", &cfg.Upstreams.Data.AuthToken)
	envString("GITHUB_MCP_URL", &cfg.Upstreams.Publish.URL)
	envString("GITHUB_AUTH_KEY", &cfg.Upstreams.Publish.AuthToken)

	if val := os.Getenv("LIBRECHAT_URL"); val != "" {
		cfg.Chat.UpstreamURL = val
		cfg.Chat.Enabled = true
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(origins)
		cfg.Server.CORS.AllowCredentials = true
	}
}

func applyUpstreamEnv(name string, u *UpstreamConfig) {
	prefix := "VOYGEN_UPSTREAMS_" + name + "_"
	envString(prefix+"URL", &u.URL)
	envString(prefix+"AUTH_TOKEN", &u.AuthToken)
	envString(prefix+"TRANSPORT", &u.Transport)
	envString(prefix+"CALL_PATH", &u.CallPath)
	envDuration(prefix+"TIMEOUT", &u.Timeout)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envInt64(key string, dst *int64) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envList(key string, dst *[]string) {
	if val := os.Getenv(key); val != "" {
		*dst = splitList(val)
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
