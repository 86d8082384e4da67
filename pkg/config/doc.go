// Package config provides configuration management for the Voygen gateway.
//
// Configuration is read from a YAML file, decoded on top of built-in
// defaults, overridden from the environment, and validated.
//
// # Configuration Loading
//
//	if err := config.LoadDotEnv(); err != nil { ... }
//	cfg, err := config.LoadConfigWithEnvOverrides("voygen.yaml")
//
// The default file, voygen.yaml, may be missing; an explicitly named file
// may not.
//
// # Environment Variables
//
// The variables existing deployments already use are honoured:
//
//   - PORT sets server.listen_address to 0.0.0.0:$PORT
//   - NODE_ENV sets server.environment
//   - MCP_D1_DATABASE_URL and MCP_AUTH_KEY configure upstreams.data
//   - GITHUB_MCP_URL and GITHUB_AUTH_KEY configure upstreams.publish
//   - LIBRECHAT_URL sets chat.upstream_url and enables the chat layer
//   - ALLOWED_ORIGINS sets the CORS origins and allows credentials
//
// VOYGEN_SECTION_FIELD variables (e.g. VOYGEN_SERVER_LISTEN_ADDRESS,
// VOYGEN_UPSTREAMS_DATA_TRANSPORT) are applied afterwards and win.
//
// # Reloading
//
// Watcher observes the configuration file with fsnotify and hands each
// valid new configuration to a callback; invalid edits are logged and
// ignored.
package config
