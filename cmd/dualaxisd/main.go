package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spiceai/dualaxis/pkg/runtime"
	"github.com/spiceai/dualaxis/pkg/version"
)

var appDir string

func main() {
	version.SetComponent("dualaxisd")

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

var RootCmd = &cobra.Command{
	Use:   "dualaxisd",
	Short: "DualAxis Runtime",
	Run: func(cmd *cobra.Command, args []string) {
		r := runtime.GetRuntime()

		err := r.BindFlags(cmd.Flags().Lookup("http-port"))
		if err != nil {
			log.Fatalln(err)
		}

		if appDir == "" {
			appDir, err = os.Getwd()
			if err != nil {
				log.Fatalln(err)
			}
		}

		err = r.Run(appDir)
		if err != nil {
			log.Fatalln(err)
		}
		defer r.Shutdown()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, os.Interrupt)
		<-stop
	},
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version())
	},
}

func init() {
	RootCmd.Flags().StringVar(&appDir, "app-dir", "", "Directory holding .dualaxis/config.yaml (default: current directory)")
	RootCmd.Flags().Uint("http-port", 8000, "HTTP port, overrides http_port in the configuration")
	RootCmd.AddCommand(VersionCmd)
}
