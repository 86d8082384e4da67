package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"voygen/gateway/pkg/cli"
	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/mcp"
)

var mcpFlags struct {
	upstream string
	params   string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Call the remote MCP services",
	Long:  `Call methods on the configured MCP services directly, bypassing the HTTP routes.`,
}

var mcpCallCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Call an MCP method and print the result",
	Long: `Call a method on an upstream MCP service and print the JSON result.

Examples:
  # List proposal templates
  voygen mcp call list_templates

  # Fetch a trip from the data service
  voygen mcp call get_anything --params '{"query":"trip 42"}'

  # List published documents
  voygen mcp call list_documents --upstream publish`,
	Args: cobra.ExactArgs(1),
	RunE: callMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpCallCmd)

	mcpCallCmd.Flags().StringVarP(&mcpFlags.upstream, "upstream", "u", mcp.UpstreamData, "upstream: data, publish")
	mcpCallCmd.Flags().StringVarP(&mcpFlags.params, "params", "p", "{}", "method params as a JSON object")
}

func callMCP(cmd *cobra.Command, args []string) error {
	params, err := parseParams(mcpFlags.params)
	if err != nil {
		return err
	}

	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.GetConfig()

	registry, err := mcp.NewRegistry(cfg.Upstreams, mcp.Options{})
	if err != nil {
		return cli.NewCommandError("mcp", err)
	}
	defer registry.Close()

	ctx, stop := runContext(cmd)
	defer stop()

	result, err := registry.Call(ctx, mcpFlags.upstream, args[0], params)
	if err != nil {
		return cli.NewCommandError("mcp", err)
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), result)
}

// parseParams checks that raw is a JSON object and returns it unchanged.
func parseParams(raw string) (json.RawMessage, error) {
	if raw == "" {
		raw = "{}"
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("--params must be a JSON object: %q", raw)
	}
	return json.RawMessage(raw), nil
}
