package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voygen/gateway/pkg/cli"
	"voygen/gateway/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "voygen",
	Short: "Voygen gateway - MCP forwarding API and LibreChat proxy",
	Long: `Voygen gateway serves the Voygen travel-planning API and the LibreChat
chat application from a single origin.

It provides:
  - REST endpoints forwarding ingestion, import and publishing calls to the
    remote MCP services
  - A reverse proxy to the LibreChat backend with cookie rewriting
  - Static hosting of the LibreChat client with SPA fallback
  - An optional locally launched LibreChat backend

Configuration is read from voygen.yaml, .env and the environment
(PORT, NODE_ENV, MCP_D1_DATABASE_URL, GITHUB_MCP_URL, LIBRECHAT_URL, ...).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads .env files, then the configuration file with environment
// overrides, and installs the result as the global configuration. Commands
// read it back with config.GetConfig.
func loadConfig() error {
	if err := config.LoadDotEnv(); err != nil {
		return cli.NewConfigError(".env", err)
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	config.SetConfig(cfg)
	return nil
}
