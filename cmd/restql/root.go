package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/restql/pkg/cli"
	"mercator-hq/restql/pkg/config"
)

// rootOptions are the flags shared by the serving root command and the
// commands that read the configuration file.
type rootOptions struct {
	configPath string
	listen     string
	logLevel   string
	noEnv      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "restql",
		Short: "restql - REST to GraphQL persisted query gateway",
		Long: `restql serves the REST endpoints declared in its configuration file.

Each request is resolved into GraphQL variables from its path, query string
and JSON body, forwarded to the GraphQL service as a persisted query, and
answered with the GraphQL response. A response carrying errors is answered
with 206 when it still has data and 500 otherwise.

Examples:
  # Start with ./config.yaml
  restql

  # Start with a custom config and listen address
  restql --config /etc/restql/config.yaml --listen 0.0.0.0:8080`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(opts); err != nil {
				return err
			}
			return serve(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "config file path")
	cmd.PersistentFlags().BoolVar(&opts.noEnv, "no-env", false, "ignore RESTQL_* environment overrides")
	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log level (TRACE, DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(
		newSchemaCmd(),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads the configuration file, applies command-line overrides
// and publishes the result as the process configuration.
func loadConfig(opts *rootOptions) error {
	load := config.LoadConfigWithEnvOverrides
	if opts.noEnv {
		load = config.LoadConfig
	}
	cfg, err := load(opts.configPath)
	if err != nil {
		return cli.NewConfigError(opts.configPath, err)
	}

	if opts.listen != "" || opts.logLevel != "" {
		if opts.listen != "" {
			cfg.Common.Listen = opts.listen
		}
		if opts.logLevel != "" {
			cfg.Common.Logging.Level = opts.logLevel
		}
		if err := config.Validate(cfg); err != nil {
			return cli.NewConfigError(opts.configPath, err)
		}
	}

	config.SetConfig(cfg)
	return nil
}
