package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voygen/gateway/pkg/chatapp"
	"voygen/gateway/pkg/cli"
	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/content"
	"voygen/gateway/pkg/journal"
	"voygen/gateway/pkg/journal/retention"
	"voygen/gateway/pkg/journal/storage"
	"voygen/gateway/pkg/mcp"
	"voygen/gateway/pkg/server"
	"voygen/gateway/pkg/telemetry/health"
	"voygen/gateway/pkg/telemetry/logging"
	"voygen/gateway/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Voygen gateway",
	Long: `Start the Voygen gateway with the specified configuration.

The gateway listens on the configured address, forwards the /voygen routes to
the remote MCP services and, when chat is enabled, proxies the LibreChat API and
serves its client. In local chat mode the LibreChat backend is launched as a
child process and stopped with the gateway.

Examples:
  # Start with voygen.yaml and .env from the working directory
  voygen run

  # Start with custom config
  voygen run --config /etc/voygen/voygen.yaml

  # Override listen address
  voygen run --listen 0.0.0.0:8080

  # Reload upstreams and log level when the config file changes
  voygen run --watch

  # Validate config without starting the server
  voygen run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVarP(&runFlags.watch, "watch", "w", false, "reload configuration when the config file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.Telemetry.Logging.Level,
		Format:  cfg.Telemetry.Logging.Format,
		Redact:  cfg.Telemetry.Logging.Redact,
		Secrets: secretsOf(cfg),
		Writer:  os.Stdout,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	logger.SetDefault()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	checker := health.New(0)

	// Journal of upstream calls (if enabled)
	var (
		store    journal.Storage
		recorder *journal.Recorder
	)
	if cfg.Journal.Enabled {
		slog.Info("initializing call journal", "backend", cfg.Journal.Backend)

		store, err = storage.Open(&cfg.Journal)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal: %w", err))
		}
		defer store.Close()

		recorder = journal.NewRecorder(store, cfg.Journal.BufferSize, collector)
		defer recorder.Close()

		checker.RegisterCheck("journal", store.Ping)
		fmt.Println("✓ Call journal initialized")
	}

	// Upstream MCP services
	registry, err := mcp.NewRegistry(cfg.Upstreams, mcp.Options{
		Metrics: collector,
		Journal: recorder,
		Logger:  logger.Slog(),
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create upstream callers: %w", err))
	}
	defer registry.Close()

	checker.RegisterOptionalCheck("data_mcp", registry.CheckUpstream(mcp.UpstreamData))
	checker.RegisterOptionalCheck("publish_mcp", registry.CheckUpstream(mcp.UpstreamPublish))
	printUpstream(mcp.UpstreamData, cfg.Upstreams.Data)
	printUpstream(mcp.UpstreamPublish, cfg.Upstreams.Publish)

	deps := server.Dependencies{
		Forwarder: registry,
		Extractor: content.NewExtractor(nil, Version),
		Checker:   checker,
		Metrics:   collector,
		Version:   Version,
	}

	// Chat application
	var launcher *chatapp.Launcher
	if cfg.Chat.Enabled {
		proxy, err := chatapp.NewProxy(cfg.Chat, collector)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create chat proxy: %w", err))
		}
		prober := chatapp.NewProber(cfg.Chat.Target(), cfg.Chat.HealthPath, nil, collector)
		deps.ChatProxy = proxy
		deps.ChatProber = prober
		checker.RegisterOptionalCheck("chat_backend", prober.Check)

		if cfg.Chat.IsLocal() && cfg.Chat.Backend.Command != "" {
			launcher = chatapp.NewLauncher(cfg.Chat.Backend, collector)
		}
		fmt.Printf("✓ Chat proxy → %s\n", cfg.Chat.Target())
	}

	srv := server.NewServer(cfg, deps)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	if launcher != nil {
		g.Go(func() error {
			// The gateway keeps serving when the backend cannot start;
			// /health/chat and /ready report it as down.
			if err := launcher.Run(gctx); err != nil {
				slog.Error("chat backend launch failed", "error", err)
			}
			return nil
		})
	}

	if store != nil && cfg.Journal.Retention.Schedule != "" {
		pruner := retention.NewPruner(store, retentionConfig(cfg.Journal.Retention), collector)
		scheduler := retention.NewScheduler(pruner, cfg.Journal.Retention.Schedule)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		g.Go(func() error {
			return watcher.Watch(gctx, func(next *config.Config) {
				applyReload(registry, logger, next)
			})
		})
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// applyReload installs the parts of a reloaded configuration that can change
// at runtime. Listener, chat, and journal settings need a restart.
func applyReload(registry *mcp.Registry, logger *logging.Logger, next *config.Config) {
	if err := registry.Swap(next.Upstreams); err != nil {
		slog.Error("failed to reload upstreams", "error", err)
	}
	if runFlags.logLevel == "" && !verbose {
		if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
			slog.Error("failed to reload log level", "error", err)
		}
	}
	logger.SetSecrets(secretsOf(next))
}

// secretsOf returns the configured values that must never appear in logs.
func secretsOf(cfg *config.Config) []string {
	var secrets []string
	for _, token := range []string{cfg.Upstreams.Data.AuthToken, cfg.Upstreams.Publish.AuthToken} {
		if token != "" {
			secrets = append(secrets, token)
		}
	}
	return secrets
}

func retentionConfig(cfg config.RetentionConfig) retention.Config {
	return retention.Config{
		Days:       cfg.Days,
		Schedule:   cfg.Schedule,
		MaxRecords: cfg.MaxRecords,
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Voygen gateway v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("environment", "environment", cfg.Server.Environment)
	if cfg.Chat.Enabled {
		slog.Debug("chat enabled", "local", cfg.Chat.IsLocal(), "static_dir", cfg.Chat.StaticDir)
	}
}

func printUpstream(name string, cfg config.UpstreamConfig) {
	if cfg.URL == "" {
		fmt.Printf("! Upstream %s not configured (%s)\n", name, mcp.NotConfiguredMessage(name))
		return
	}
	fmt.Printf("✓ Upstream %s → %s (%s)\n", name, cfg.URL, cfg.Transport)
}

// runContext is the context one-off subcommands use for upstream calls and
// journal queries.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return cli.SetupSignalHandler(cmd.Context())
}
