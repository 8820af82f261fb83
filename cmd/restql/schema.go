package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"mercator-hq/restql/pkg/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-schema",
		Short: "Print the JSON Schema of the configuration file",
		Long: `Print the JSON Schema (draft 2020-12) describing the configuration file.

The configuration file is not read. The schema can be used by editors and
CI to check configuration files before deployment.

Examples:
  restql config-schema > restql.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(config.Schema())
		},
	}
}
