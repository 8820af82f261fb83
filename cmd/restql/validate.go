package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/restql/pkg/cli"
	"mercator-hq/restql/pkg/config"
	"mercator-hq/restql/pkg/gateway"
)

// routeEntry is one resolved route as printed by validate.
type routeEntry struct {
	Method           string `json:"method"`
	Path             string `json:"path"`
	PersistedQueryID string `json:"pq_id"`
}

type routeListing []routeEntry

func (l routeListing) Lines() []string {
	lines := make([]string, len(l))
	for i, r := range l {
		lines[i] = fmt.Sprintf("%s %s -> %s", r.Method, r.Path, r.PersistedQueryID)
	}
	return lines
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and list its routes",
		Long: `Load and validate the configuration file, build the route table and
print every resolved route without starting the server.

Examples:
  restql validate --config config.yaml
  restql validate -c config.yaml --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := cli.NewFormatter(cli.OutputFormat(format))
			if err != nil {
				return err
			}

			if err := loadConfig(&rootOptions{configPath: root.configPath}); err != nil {
				return err
			}

			table, err := gateway.NewRouteTable(config.MustGetConfig(), gateway.New(nil, gateway.Options{}))
			if err != nil {
				return cli.NewConfigError(root.configPath, err)
			}

			listing := make(routeListing, 0, table.Len())
			for _, route := range table.Routes() {
				listing = append(listing, routeEntry{
					Method:           string(route.Method),
					Path:             route.Path,
					PersistedQueryID: route.Endpoint.PersistedQueryID,
				})
			}
			return formatter.FormatTo(cmd.OutOrStdout(), listing)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", string(cli.FormatText), "output format: text, json")
	return cmd
}
