package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/spiceai/dualaxis/pkg/chart"
)

func newChartCmd() *cobra.Command {
	flags := &loadFlags{}

	cmd := &cobra.Command{
		Use:   "chart <path>",
		Short: "Print the chart configuration for a data file as JSON",
		Args:  cobra.ExactArgs(1),
		Example: `
dualaxis chart weather.csv
dualaxis chart weather.csv --y1 temp --y2 hum --title Weather
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.loadComponent(cmd, args[0])
			if err != nil {
				return err
			}

			config, err := c.Chart()
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(config, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newRenderCmd() *cobra.Command {
	flags := &loadFlags{}
	var out string
	var format string
	renderOptions := chart.DefaultRenderOptions()

	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render the chart for a data file to a PNG or SVG image",
		Args:  cobra.ExactArgs(1),
		Example: `
dualaxis render weather.csv --out weather.png
dualaxis render weather.csv --y2 hum --out weather.svg
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			chartFormat, err := chart.ParseFormat(format)
			if err != nil {
				return err
			}

			c, err := flags.loadComponent(cmd, args[0])
			if err != nil {
				return err
			}

			config, err := c.Chart()
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create '%s': %w", out, err)
			}
			defer f.Close()

			if err := chart.Render(config, chartFormat, f, renderOptions); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), aurora.Green(fmt.Sprintf("Chart written to %s", out)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "Output file")
	cmd.Flags().StringVar(&format, "format", "", "Image format: png or svg (default: from output file extension)")
	cmd.Flags().IntVar(&renderOptions.Width, "width", renderOptions.Width, "Image width")
	cmd.Flags().IntVar(&renderOptions.Height, "height", renderOptions.Height, "Image height")

	return cmd
}
