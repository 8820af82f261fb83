/*
Package cli holds the helpers shared by the restql commands.

Errors:

Startup failures are wrapped so the top-level command can print a single
diagnostic line:

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return cli.NewConfigError(path, err)
	}

Output Formatting:

Command results are rendered as text (one line per item for values that
implement Lines) or as indented JSON:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, routes)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
