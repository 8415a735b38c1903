package util

import (
	"os"
	"strings"
)

// ReplaceEnvVariablesFromPath reads filePath and expands ${VAR} references to
// variables starting with envVarPrefix. Other references are left as written.
// Viper's AutomaticEnv does not reach nested keys on Unmarshal, see
// https://github.com/spf13/viper/issues/761
func ReplaceEnvVariablesFromPath(filePath string, envVarPrefix string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	expanded := os.Expand(string(content), func(name string) string {
		if !strings.HasPrefix(name, envVarPrefix) {
			return "${" + name + "}"
		}
		return os.Getenv(name)
	})

	return []byte(expanded), nil
}
