package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"voygen/gateway/pkg/cli"
	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/mcp"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the gateway configuration",
	Long: `Load the configuration file, .env and environment overrides, validate the
result and print a summary of the effective settings.

Examples:
  # Validate voygen.yaml in the working directory
  voygen validate

  # Validate a specific file and print the effective configuration as JSON
  voygen validate --config /etc/voygen/voygen.yaml --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}

	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.GetConfig()

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newConfigSummary(cfg))
}

// configSummary is the printable result of validate. Auth tokens are
// reported only as present or absent.
type configSummary struct {
	Path        string            `json:"path"`
	Listen      string            `json:"listen_address"`
	Environment string            `json:"environment"`
	Upstreams   []upstreamSummary `json:"upstreams"`
	Chat        chatSummary       `json:"chat"`
	Journal     journalSummary    `json:"journal"`
	LogLevel    string            `json:"log_level"`
	Metrics     string            `json:"metrics_path,omitempty"`
}

type upstreamSummary struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	Transport  string `json:"transport"`
	Configured bool   `json:"configured"`
	AuthToken  bool   `json:"auth_token"`
}

type chatSummary struct {
	Enabled   bool     `json:"enabled"`
	Mode      string   `json:"mode,omitempty"`
	Target    string   `json:"target,omitempty"`
	Prefixes  []string `json:"proxy_prefixes,omitempty"`
	StaticDir string   `json:"static_dir,omitempty"`
	Launch    string   `json:"launch_command,omitempty"`
}

type journalSummary struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend,omitempty"`
	Days    int    `json:"retention_days,omitempty"`
}

func newConfigSummary(cfg *config.Config) configSummary {
	s := configSummary{
		Path:        cfgFile,
		Listen:      cfg.Server.ListenAddress,
		Environment: cfg.Server.Environment,
		Upstreams: []upstreamSummary{
			newUpstreamSummary(mcp.UpstreamData, cfg.Upstreams.Data),
			newUpstreamSummary(mcp.UpstreamPublish, cfg.Upstreams.Publish),
		},
		Chat:     chatSummary{Enabled: cfg.Chat.Enabled},
		Journal:  journalSummary{Enabled: cfg.Journal.Enabled},
		LogLevel: cfg.Telemetry.Logging.Level,
	}
	if cfg.Telemetry.Metrics.Enabled {
		s.Metrics = cfg.Telemetry.Metrics.Path
	}

	if cfg.Chat.Enabled {
		s.Chat.Mode = "remote"
		if cfg.Chat.IsLocal() {
			s.Chat.Mode = "local"
			s.Chat.Launch = cfg.Chat.Backend.Command
		}
		s.Chat.Target = cfg.Chat.Target()
		s.Chat.Prefixes = cfg.Chat.ProxyPrefixes
		s.Chat.StaticDir = cfg.Chat.StaticDir
	}

	if cfg.Journal.Enabled {
		s.Journal.Backend = cfg.Journal.Backend
		s.Journal.Days = cfg.Journal.Retention.Days
	}
	return s
}

func newUpstreamSummary(name string, cfg config.UpstreamConfig) upstreamSummary {
	return upstreamSummary{
		Name:       name,
		URL:        cfg.URL,
		Transport:  cfg.Transport,
		Configured: cfg.URL != "",
		AuthToken:  cfg.AuthToken != "",
	}
}

// WriteText implements cli.TextWriter.
func (s configSummary) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "✓ Configuration valid: %s\n\n", s.Path)
	fmt.Fprintf(w, "Listen:      %s\n", s.Listen)
	fmt.Fprintf(w, "Environment: %s\n", s.Environment)
	fmt.Fprintf(w, "Log level:   %s\n", s.LogLevel)
	if s.Metrics != "" {
		fmt.Fprintf(w, "Metrics:     %s\n", s.Metrics)
	}

	fmt.Fprintln(w, "\nUpstreams:")
	for _, u := range s.Upstreams {
		if !u.Configured {
			fmt.Fprintf(w, "  %-8s not configured (%s)\n", u.Name, mcp.NotConfiguredMessage(u.Name))
			continue
		}
		auth := ""
		if u.AuthToken {
			auth = ", bearer auth"
		}
		fmt.Fprintf(w, "  %-8s %s (%s%s)\n", u.Name, u.URL, u.Transport, auth)
	}

	fmt.Fprintln(w, "\nChat:")
	if !s.Chat.Enabled {
		fmt.Fprintln(w, "  disabled")
	} else {
		fmt.Fprintf(w, "  mode:     %s\n", s.Chat.Mode)
		fmt.Fprintf(w, "  target:   %s\n", s.Chat.Target)
		fmt.Fprintf(w, "  prefixes: %v\n", s.Chat.Prefixes)
		if s.Chat.StaticDir != "" {
			fmt.Fprintf(w, "  static:   %s\n", s.Chat.StaticDir)
		}
		if s.Chat.Launch != "" {
			fmt.Fprintf(w, "  launch:   %s\n", s.Chat.Launch)
		}
	}

	fmt.Fprintln(w, "\nJournal:")
	if !s.Journal.Enabled {
		_, err := fmt.Fprintln(w, "  disabled")
		return err
	}
	_, err := fmt.Fprintf(w, "  %s, retention %d days\n", s.Journal.Backend, s.Journal.Days)
	return err
}
