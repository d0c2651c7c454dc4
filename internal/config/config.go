// Package config loads server configuration from environment variables
// (optionally a config file) via viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"ADDR"`
	// BaseURL is the externally reachable base URL encoded into QR labels.
	BaseURL string `mapstructure:"BASE_URL"`
	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"DB_PATH"`
	// UploadDir is where item photos are stored.
	UploadDir string `mapstructure:"UPLOAD_DIR"`
}

// Load reads configuration from an optional config file in path and from
// environment variables, applying defaults for anything unset.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8000")
	v.SetDefault("BASE_URL", "http://localhost:8000")
	v.SetDefault("DB_PATH", "food_storage.sqlite3")
	v.SetDefault("UPLOAD_DIR", "uploads")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
