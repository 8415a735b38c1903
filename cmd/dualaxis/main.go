package main

import (
	"github.com/spiceai/dualaxis/pkg/cli/cmd"
	"github.com/spiceai/dualaxis/pkg/version"
)

func main() {
	version.SetComponent("dualaxis")
	cmd.Execute()
}
