// Package config loads the engine's runtime knobs via viper: a config file
// (config.yaml in /etc/accessd, $HOME/.accessd, or the working directory),
// overridden by ACCESSD_-prefixed environment variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries the handful of settings the access control engine itself
// reads. Everything storage/transport/credential-specific belongs to other
// components of the directory server, not this package.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`  // debug | info | warn | error
	LogFormat string `mapstructure:"log_format"` // json | text

	// StrictMode is loaded and logged at startup. Nothing in the engine reads
	// it: the transaction container's Commit always publishes, whatever the
	// number of policies of each kind. Off by default.
	StrictMode bool `mapstructure:"acp_strict_mode"`

	// ResolveCacheSize bounds the filter-resolution cache (§4.2, §4.9).
	ResolveCacheSize int `mapstructure:"acp_resolve_cache_size"`

	// OAuth2DynamicRead toggles the §4.3 hook that grants read of an OAuth2
	// resource server's canonical public attributes to its scope-map group.
	OAuth2DynamicRead bool `mapstructure:"acp_oauth2_dynamic_read"`
}

// Load reads configuration from defaults, file, and environment; precedence
// from lowest to highest is defaults < file < env, viper's usual rule.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/accessd/")
	viper.AddConfigPath("$HOME/.accessd")
	viper.AddConfigPath(".")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("acp_strict_mode", false)
	viper.SetDefault("acp_resolve_cache_size", 256)
	viper.SetDefault("acp_oauth2_dynamic_read", true)

	viper.SetEnvPrefix("ACCESSD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.ResolveCacheSize <= 0 {
		cfg.ResolveCacheSize = 256
	}
	return &cfg, nil
}
