package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiceai/dualaxis/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "DualAxis CLI version",
		Example: `
dualaxis version
`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "CLI version: %s\n", version.Version())
		},
	}
}
