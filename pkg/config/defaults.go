package config

import "time"

// Environment names.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Upstream transports.
const (
	TransportRPC            = "rpc"
	TransportStreamableHTTP = "streamable-http"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:3000"
	DefaultEnvironment     = EnvironmentProduction
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = time.Duration(0)
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576         // 1MB
	DefaultMaxBodyBytes    = int64(10 << 20) // 10MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = false

	// Upstream defaults
	DefaultUpstreamTransport = TransportRPC
	DefaultUpstreamCallPath  = "/mcp/call"

	// Chat defaults
	DefaultChatHealthPath  = "/api/auth/logout"
	DefaultChatBackendPort = 3080

	// Journal defaults
	DefaultJournalEnabled         = false
	DefaultJournalBackend         = "sqlite"
	DefaultJournalBufferSize      = 256
	DefaultJournalSQLitePath      = "data/journal.db"
	DefaultJournalSQLiteWALMode   = true
	DefaultJournalBusyTimeout     = 5 * time.Second
	DefaultJournalRetentionDays   = 30
	DefaultJournalPruneSchedule   = "0 3 * * *"
	DefaultJournalRetentionMaxRec = int64(0)

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultLogRedact        = true
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "voygen"
)

// DefaultConfig returns a configuration with every field set to its default.
// YAML files are decoded on top of it, so boolean defaults of true survive
// sections the file does not mention.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{
				Enabled:          DefaultCORSEnabled,
				AllowCredentials: DefaultCORSAllowCredentials,
			},
		},
		Journal: JournalConfig{
			Enabled: DefaultJournalEnabled,
			SQLite: SQLiteConfig{
				WALMode: DefaultJournalSQLiteWALMode,
			},
			Retention: RetentionConfig{
				Days: DefaultJournalRetentionDays,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLogRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = DefaultEnvironment
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Upstream defaults
	applyUpstreamDefaults(&cfg.Upstreams.Data)
	applyUpstreamDefaults(&cfg.Upstreams.Publish)

	// Chat defaults
	if len(cfg.Chat.ProxyPrefixes) == 0 {
		cfg.Chat.ProxyPrefixes = []string{"/api", "/oauth"}
	}
	if cfg.Chat.HealthPath == "" {
		cfg.Chat.HealthPath = DefaultChatHealthPath
	}
	if cfg.Chat.Backend.Port == 0 {
		cfg.Chat.Backend.Port = DefaultChatBackendPort
	}

	// Journal defaults
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.BufferSize == 0 {
		cfg.Journal.BufferSize = DefaultJournalBufferSize
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.Journal.Retention.Schedule == "" {
		cfg.Journal.Retention.Schedule = DefaultJournalPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyUpstreamDefaults(u *UpstreamConfig) {
	if u.Transport == "" {
		u.Transport = DefaultUpstreamTransport
	}
	if u.CallPath == "" {
		u.CallPath = DefaultUpstreamCallPath
	}
}
