package version

import "fmt"

// Values for these are injected by the build.
var (
	version   = "edge"
	component = "dualaxis"
)

// Version returns the DualAxis version. This is either a semantic version
// number or else, in the case of unreleased code, the string "edge".
func Version() string {
	if version == "edge" {
		return version
	}

	return fmt.Sprintf("v%s", version)
}

// Component names the binary this build belongs to.
func Component() string {
	return component
}

// SetComponent is called by each binary before anything reports a version.
func SetComponent(name string) {
	component = name
}
