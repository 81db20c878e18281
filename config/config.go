// Package config loads server configuration from an optional zenith.yaml
// and ZENITH_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider holds per-platform settings.
type Provider struct {
	// BaseURL overrides the platform's application host; empty uses the
	// platform default.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is a fallback token used when the caller supplies none.
	APIKey string `mapstructure:"api_key"`
}

// Config is the full server configuration.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `mapstructure:"listen"`
	// LogLevel selects zap's level: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// RetryAttempts is the queue-protocol attempt budget per round-trip.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryBaseDelay is the linear backoff unit between attempts.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`

	// CacheCapacity is the maximum number of proxied image blobs held in
	// memory.
	CacheCapacity int `mapstructure:"cache_capacity"`

	// Providers holds per-platform overrides keyed by platform name.
	Providers map[string]Provider `mapstructure:"providers"`
}

// Load reads configuration from path (optional; "" searches the working
// directory) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_base_delay", time.Second)
	v.SetDefault("cache_capacity", 256)

	v.SetEnvPrefix("zenith")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zenith")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
