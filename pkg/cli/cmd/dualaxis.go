package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spiceai/dualaxis/pkg/validation"
)

var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dualaxis",
		Short:         "DualAxis CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newColumnsCmd(),
		newControlsCmd(),
		newChartCmd(),
		newRenderCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command.
func Execute() {
	cobra.OnInitialize(initConfig)

	if err := RootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(-1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("dualaxis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func printError(err error) {
	if failure, ok := validation.AsFailure(err); ok {
		fmt.Fprintln(os.Stderr, aurora.Red(failure.Message))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
