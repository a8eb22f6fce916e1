// Package config loads CLI preferences from the user's config file.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// CLIConfig carries user-level defaults for the CLI.
type CLIConfig struct {
	DefaultFormat string `mapstructure:"default_format"`
	DefaultOutput string `mapstructure:"default_output"`
}

// LoadConfig reads the named config file, or $HOME/.dataprobe.yaml when cfgFile
// is empty. A missing file yields the defaults.
func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		DefaultFormat: "text",
		DefaultOutput: "-",
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dataprobe")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, err
		}
		return config, nil
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	return config, nil
}
