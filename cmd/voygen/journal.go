package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voygen/gateway/pkg/cli"
	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/journal"
	"voygen/gateway/pkg/journal/retention"
	"voygen/gateway/pkg/journal/storage"
)

var journalFlags struct {
	since    string
	until    string
	upstream string
	method   string
	status   string
	limit    int
	format   string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the upstream call journal",
	Long: `Inspect and prune the journal of calls made to the remote MCP services.

Subcommands:
  list   - List journal entries with filters
  prune  - Apply the configured retention now

Examples:
  # Failed calls of the last hour
  voygen journal list --status error --since 1h

  # Publish calls in a time window, as JSON
  voygen journal list --upstream publish --since 2026-03-01T00:00:00Z --until 2026-03-02T00:00:00Z --format json

  # Prune with the configured retention
  voygen journal prune`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	Long: `List journal entries, newest first.

Time values accept RFC3339 timestamps or a duration relative to now
(e.g. "30m", "24h").`,
	RunE: listJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune journal entries",
	Long:  `Delete journal entries older than journal.retention.days and beyond journal.retention.max_records.`,
	RunE:  pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalPruneCmd)

	journalListCmd.Flags().StringVar(&journalFlags.since, "since", "", "entries created at or after (RFC3339 or duration)")
	journalListCmd.Flags().StringVar(&journalFlags.until, "until", "", "entries created at or before (RFC3339 or duration)")
	journalListCmd.Flags().StringVar(&journalFlags.upstream, "upstream", "", "filter by upstream (data, publish)")
	journalListCmd.Flags().StringVar(&journalFlags.method, "method", "", "filter by MCP method")
	journalListCmd.Flags().StringVar(&journalFlags.status, "status", "", "filter by status (success, error)")
	journalListCmd.Flags().IntVar(&journalFlags.limit, "limit", journal.DefaultLimit, "max results")
	journalListCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json")
}

func openJournal(cfg *config.Config) (journal.Storage, error) {
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("journal is disabled (set journal.enabled in %s)", cfgFile)
	}
	store, err := storage.Open(&cfg.Journal)
	if err != nil {
		return nil, cli.NewCommandError("journal", fmt.Errorf("failed to open journal: %w", err))
	}
	return store, nil
}

func listJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(journalFlags.format)
	if err != nil {
		return err
	}

	q, err := buildJournalQuery(time.Now())
	if err != nil {
		return err
	}

	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.GetConfig()

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := runContext(cmd)
	defer stop()

	entries, err := store.List(ctx, q)
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), entries)
	}
	return entryTable(entries).WriteText(cmd.OutOrStdout())
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.GetConfig()

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := runContext(cmd)
	defer stop()

	pruner := retention.NewPruner(store, retentionConfig(cfg.Journal.Retention), nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("journal", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d entries\n", deleted)
	return nil
}

// buildJournalQuery turns the list flags into a query relative to now.
func buildJournalQuery(now time.Time) (journal.Query, error) {
	q := journal.Query{
		Upstream: journalFlags.upstream,
		Method:   journalFlags.method,
		Limit:    journalFlags.limit,
	}

	switch journalFlags.status {
	case "", journal.StatusSuccess, journal.StatusError:
		q.Status = journalFlags.status
	default:
		return q, fmt.Errorf("invalid status %q (expected: success, error)", journalFlags.status)
	}

	var err error
	if q.Since, err = parseTimeFlag(journalFlags.since, now); err != nil {
		return q, fmt.Errorf("invalid --since: %w", err)
	}
	if q.Until, err = parseTimeFlag(journalFlags.until, now); err != nil {
		return q, fmt.Errorf("invalid --until: %w", err)
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return q, fmt.Errorf("--until is before --since")
	}
	return q, nil
}

// parseTimeFlag accepts an RFC3339 timestamp or a duration before now.
// An empty value yields the zero time.
func parseTimeFlag(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor a duration", value)
	}
	if d < 0 {
		d = -d
	}
	return now.Add(-d), nil
}

type entryTable []*journal.Entry

// WriteText implements cli.TextWriter.
func (t entryTable) WriteText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No entries found")
		return err
	}

	fmt.Fprintf(w, "%-24s  %-8s  %-48s  %-7s  %8s  %s\n", "TIME", "UPSTREAM", "METHOD", "STATUS", "DURATION", "ROUTE")
	for _, e := range t {
		fmt.Fprintf(w, "%-24s  %-8s  %-48s  %-7s  %8s  %s\n",
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			e.Upstream,
			e.Method,
			e.Status,
			e.Duration.Round(time.Millisecond),
			e.Route,
		)
		if e.Error != "" {
			fmt.Fprintf(w, "    %s\n", strings.TrimSpace(e.Error))
		}
	}
	_, err := fmt.Fprintf(w, "\n%d entries\n", len(t))
	return err
}
