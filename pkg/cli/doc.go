/*
Package cli provides command-line interface utilities for the voygen command.

Output Formatting:

Commands print results as text or JSON, selected with --format:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Results that implement TextWriter render their own text form.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown

Errors:

ConfigError and CommandError wrap failures with the config path or command
name; both unwrap to their cause.
*/
package cli
