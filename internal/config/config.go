package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config controls the comparator front end. Field tags name the keys
// accepted in boundscmp.{yaml,toml,json} and BOUNDSCMP_* variables.
type Config struct {
	// Trace logs every deciding comparison at V(1).
	Trace   bool          `mapstructure:"trace"`
	Logging LoggingConfig `mapstructure:"logging"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type LoggingConfig struct {
	Format string `mapstructure:"format"` // text or json
	Level  string `mapstructure:"level"`  // debug, info, warn, error
}

type CacheConfig struct {
	// Types is the resolver LRU size; 0 disables caching.
	Types int `mapstructure:"types"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Cache: CacheConfig{
			Types: 256,
		},
	}
}

// Load reads path, or boundscmp.* from the working directory when path is
// empty. A missing default file yields DefaultConfig. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("trace", def.Trace)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("cache.types", def.Cache.Types)

	v.SetEnvPrefix("BOUNDSCMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("boundscmp")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &Error{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Cache.Types < 0 {
		return &Error{Field: "cache.types", Message: "must not be negative"}
	}
	return nil
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
