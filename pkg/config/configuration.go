package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/spiceai/dualaxis/pkg/spec"
	"github.com/spiceai/dualaxis/pkg/util"
	"gopkg.in/yaml.v2"
)

const (
	ConfigDirName string = ".dualaxis"
)

var (
	DualAxisEnvVarPrefix string = "DUALAXIS_"
)

type ChartConfiguration struct {
	HttpPort uint               `json:"http_port,omitempty" mapstructure:"http_port,omitempty" yaml:"http_port,omitempty"`
	Data     *spec.DataSpec     `json:"data,omitempty" mapstructure:"data,omitempty" yaml:"data,omitempty"`
	Controls *spec.ControlsSpec `json:"controls,omitempty" mapstructure:"controls,omitempty" yaml:"controls,omitempty"`
	Chart    *spec.ChartSpec    `json:"chart,omitempty" mapstructure:"chart,omitempty" yaml:"chart,omitempty"`
	LogDir   string             `json:"log_dir,omitempty" mapstructure:"log_dir,omitempty" yaml:"log_dir,omitempty"`
}

func LoadDefaultConfiguration() *ChartConfiguration {
	return &ChartConfiguration{
		HttpPort: 8000,
		Controls: &spec.ControlsSpec{
			Time: 1,
			Y1:   1,
			Y2:   0,
		},
		Chart: &spec.ChartSpec{
			Separator:       ", ",
			DefaultLocation: "UTC",
			Width:           1024,
			Height:          400,
		},
	}
}

// LoadConfiguration reads <appDir>/.dualaxis/config.yaml (or .yml). When
// neither exists the defaults are written there first.
func LoadConfiguration(v *viper.Viper, appDir string) (*ChartConfiguration, error) {
	configDir := filepath.Join(appDir, ConfigDirName)
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	config := LoadDefaultConfiguration()
	configPath := ""

	if _, err := os.Stat(filepath.Join(configDir, "config.yaml")); err == nil {
		configPath = filepath.Join(configDir, "config.yaml")
	} else if _, err := os.Stat(filepath.Join(configDir, "config.yml")); err == nil {
		configPath = filepath.Join(configDir, "config.yml")
	}

	if configPath != "" {
		configBytes, err := util.ReplaceEnvVariablesFromPath(configPath, DualAxisEnvVarPrefix)
		if err != nil {
			return nil, err
		}

		err = v.ReadConfig(bytes.NewBuffer(configBytes))
		if err != nil {
			return nil, err
		}
	} else {
		// No config file found, use defaults
		configPath = filepath.Join(configDir, "config.yaml")
		marshalledConfig, err := yaml.Marshal(config)
		if err != nil {
			return nil, err
		}

		err = os.MkdirAll(configDir, 0766)
		if err != nil {
			return nil, fmt.Errorf("error initializing %s: %w", configPath, err)
		}

		err = os.WriteFile(configPath, marshalledConfig, 0766)
		if err != nil {
			return nil, fmt.Errorf("error initializing %s: %w", configPath, err)
		}

		// Wait for file flush to ensure viper.WatchConfig() works
		for i := 0; i < 10; i++ {
			if _, err = os.Stat(configPath); err == nil {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if err != nil {
			return nil, errors.New("error initializing " + configPath)
		}

		v.SetConfigFile(configPath)
		err = v.ReadInConfig()
		if err != nil {
			return nil, err
		}
	}

	v.WatchConfig()

	err := v.Unmarshal(config)
	return config, err
}

func (c *ChartConfiguration) ServerBaseUrl() string {
	return fmt.Sprintf("http://localhost:%d", c.HttpPort)
}

// LogPath returns the directory file logs are written under.
func (c *ChartConfiguration) LogPath(appDir string) string {
	if c.LogDir == "" {
		return filepath.Join(appDir, ConfigDirName)
	}
	if filepath.IsAbs(c.LogDir) {
		return c.LogDir
	}
	return filepath.Join(appDir, c.LogDir)
}
