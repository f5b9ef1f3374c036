// Package config loads application configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Downloads DownloadsConfig `mapstructure:"downloads"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DownloadsConfig holds download behavior configuration.
type DownloadsConfig struct {
	Dir            string `mapstructure:"dir"`
	OutputTemplate string `mapstructure:"output_template"`
	History        bool   `mapstructure:"history"`
	DataDir        string `mapstructure:"data_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Downloads: DownloadsConfig{
			Dir:            "videos",
			OutputTemplate: "%(title)s.%(ext)s",
			History:        true,
			DataDir:        "./data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.vget")
	}

	v.SetEnvPrefix("VGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; defaults plus env vars apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("downloads.dir", "videos")
	v.SetDefault("downloads.output_template", "%(title)s.%(ext)s")
	v.SetDefault("downloads.history", true)
	v.SetDefault("downloads.data_dir", "./data")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
}
