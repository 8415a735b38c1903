package util

import (
	"os"
	"sync"

	"github.com/spf13/cast"
)

const DebugEnvVar = "DUALAXIS_DEBUG"

var (
	debugOnce sync.Once
	debug     bool
)

// IsDebug reports whether DUALAXIS_DEBUG holds a true value ("1", "t",
// "true", ...). The variable is read once per process.
func IsDebug() bool {
	debugOnce.Do(func() {
		debug = parseDebug(os.Getenv(DebugEnvVar))
	})
	return debug
}

func parseDebug(value string) bool {
	return cast.ToBool(value)
}
