package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiceai/dualaxis/pkg/controls"
	dualaxis_http "github.com/spiceai/dualaxis/pkg/http"
	"github.com/spiceai/dualaxis/pkg/util"
)

func newColumnsCmd() *cobra.Command {
	flags := &loadFlags{}

	cmd := &cobra.Command{
		Use:   "columns <path>",
		Short: "List the columns of a data file and how they can be charted",
		Args:  cobra.ExactArgs(1),
		Example: `
dualaxis columns weather.csv
dualaxis columns sensors.csv --param delimiter=';'
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.loadComponent(cmd, args[0])
			if err != nil {
				return err
			}

			snapshot, classification, err := c.Current()
			if err != nil {
				return err
			}

			return util.MarshalAndPrintTable(cmd.OutOrStdout(), dualaxis_http.Columns(snapshot.Table.Columns(), classification))
		},
	}
	flags.register(cmd)

	return cmd
}

type controlRow struct {
	Name     string `csv:"control"`
	Visible  bool   `csv:"visible"`
	Selected string `csv:"selected"`
	Choices  string `csv:"choices"`
}

func newControlsCmd() *cobra.Command {
	flags := &loadFlags{}

	cmd := &cobra.Command{
		Use:   "controls <path>",
		Short: "Show the chart controls for a data file",
		Args:  cobra.ExactArgs(1),
		Example: `
dualaxis controls weather.csv
dualaxis controls weather.csv --y2 temp
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.loadComponent(cmd, args[0])
			if err != nil {
				return err
			}

			all := c.Controls()
			rows := make([]controlRow, 0, len(controls.Names))
			for _, name := range controls.Names {
				update := all[name]
				rows = append(rows, controlRow{
					Name:     string(name),
					Visible:  update.Visible,
					Selected: strings.Join(update.Selected, " "),
					Choices:  strings.Join(update.Choices, " "),
				})
			}

			return util.MarshalAndPrintTable(cmd.OutOrStdout(), rows)
		},
	}
	flags.register(cmd)

	return cmd
}
