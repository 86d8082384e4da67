// Voygen is the gateway in front of the Voygen travel-planning stack.
//
// It serves:
//   - REST routes that forward hotel/room ingestion, URL imports, and
//     proposal publishing to the remote MCP services
//   - A reverse proxy to the LibreChat backend (/api, /oauth)
//   - The pre-built LibreChat client with an SPA fallback
//
// Usage:
//
//	# Start the gateway with voygen.yaml and .env from the working directory
//	voygen run
//
//	# Start with a custom configuration file and live reload
//	voygen run --config /etc/voygen/voygen.yaml --watch
//
//	# Check the configuration
//	voygen validate
//
//	# Inspect recent failed upstream calls
//	voygen journal list --status error --since 1h
//
//	# Call an MCP method directly
//	voygen mcp call list_templates
package main

func main() {
	Execute()
}
