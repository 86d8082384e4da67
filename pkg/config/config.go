package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure for the Voygen gateway.
// It contains all configuration sections for the HTTP server, the upstream
// MCP services, the proxied chat application, the call journal, and
// telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, body limits, and CORS.
	Server ServerConfig `yaml:"server"`

	// Upstreams contains the remote MCP services requests are forwarded to.
	Upstreams UpstreamsConfig `yaml:"upstreams"`

	// Chat contains configuration for the proxied chat application
	// (reverse proxy, static assets, and the optional local backend).
	Chat ChatConfig `yaml:"chat"`

	// Journal contains configuration for the forwarding-call journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "0.0.0.0:3000").
	// Default: "0.0.0.0:3000"
	ListenAddress string `yaml:"listen_address"`

	// Environment names the deployment environment. Error details are only
	// echoed to clients when it is "development".
	// Default: "production"
	Environment string `yaml:"environment"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Zero means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Chat responses are streamed, so this is off unless set.
	// Default: 0 (none)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of JSON request bodies accepted by the
	// forwarding routes.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == EnvironmentDevelopment
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// Enabled determines whether CORS headers are added to responses.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is the list of origins allowed to make cross-origin
	// requests. Use ["*"] to allow all origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is the list of HTTP methods allowed for cross-origin requests.
	// Default: ["GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the list of headers allowed in cross-origin requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is how long (in seconds) preflight results can be cached.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials allows cookies and authorization headers on
	// cross-origin requests. It cannot be combined with a "*" origin.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamsConfig names the two remote MCP services.
type UpstreamsConfig struct {
	// Data is the MCP service backing trips, hotels, rooms, and proposals.
	Data UpstreamConfig `yaml:"data"`

	// Publish is the MCP service that publishes documents (GitHub pages).
	Publish UpstreamConfig `yaml:"publish"`
}

// UpstreamConfig configures a single remote MCP service.
type UpstreamConfig struct {
	// URL is the base URL of the service. An empty URL leaves the upstream
	// unconfigured; calls to it fail with a configuration error.
	URL string `yaml:"url"`

	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string `yaml:"auth_token"`

	// Transport selects the wire protocol: "rpc" posts {method, params}
	// to CallPath, "streamable-http" speaks MCP streamable HTTP.
	// Default: "rpc"
	Transport string `yaml:"transport"`

	// CallPath is appended to URL for the rpc transport.
	// Default: "/mcp/call"
	CallPath string `yaml:"call_path"`

	// Timeout bounds a single call. Zero means no timeout beyond the
	// inbound request's context.
	// Default: 0
	Timeout time.Duration `yaml:"timeout"`
}

// ChatConfig configures the chat application layer.
type ChatConfig struct {
	// Enabled mounts the chat reverse proxy and static assets.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// UpstreamURL is the externally deployed chat application. When empty
	// the gateway runs in local mode and proxies to the spawned backend.
	UpstreamURL string `yaml:"upstream_url"`

	// ProxyPrefixes are the path prefixes forwarded to the chat backend.
	// Default: ["/api", "/oauth"]
	ProxyPrefixes []string `yaml:"proxy_prefixes"`

	// StaticDir holds the chat application's pre-built client assets.
	// Empty disables the static mount.
	StaticDir string `yaml:"static_dir"`

	// CookieDomain replaces the Domain attribute of upstream cookies.
	// Empty strips the attribute so cookies bind to this origin.
	CookieDomain string `yaml:"cookie_domain"`

	// CookiePathRewrite maps upstream cookie path prefixes to local ones.
	CookiePathRewrite map[string]string `yaml:"cookie_path_rewrite"`

	// HealthPath is probed with HEAD to check backend health.
	// Default: "/api/auth/logout"
	HealthPath string `yaml:"health_path"`

	// Backend configures the locally spawned chat backend.
	Backend BackendConfig `yaml:"backend"`
}

// IsLocal reports whether the chat backend is expected on localhost.
func (c ChatConfig) IsLocal() bool {
	return c.UpstreamURL == ""
}

// Target returns the base URL chat requests are forwarded to.
func (c ChatConfig) Target() string {
	if c.IsLocal() {
		return fmt.Sprintf("http://localhost:%d", c.Backend.Port)
	}
	return c.UpstreamURL
}

// BackendConfig configures the local chat backend child process.
type BackendConfig struct {
	// Command is the executable to spawn. Empty disables spawning.
	Command string `yaml:"command"`

	// Args are passed to Command.
	Args []string `yaml:"args"`

	// Dir is the working directory of the process.
	Dir string `yaml:"dir"`

	// Env adds variables to the inherited environment.
	Env map[string]string `yaml:"env"`

	// Port is the port the backend listens on.
	// Default: 3080
	Port int `yaml:"port"`
}

// JournalConfig configures the forwarding-call journal.
type JournalConfig struct {
	// Enabled turns on journaling of upstream calls.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// BufferSize is the capacity of the asynchronous write queue.
	// Default: 256
	BufferSize int `yaml:"buffer_size"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite journal settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains journal pruning settings.
type RetentionConfig struct {
	// Days is how long entries are kept. Zero keeps entries forever.
	// Default: 30
	Days int `yaml:"days"`

	// Schedule is a standard cron expression for pruning runs.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxRecords caps the number of stored entries. Zero means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: json or text.
	// Default: "json"
	Format string `yaml:"format"`

	// Redact masks bearer tokens and configured auth tokens in log output.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes all metric names.
	// Default: "voygen"
	Namespace string `yaml:"namespace"`
}
