// Package config loads the tunables the service runtime and HTTP parser
// consume (spec.md §6): pool sizing, shutdown poll interval, and the HTTP
// diagnostic log tag. Configuration is layered:
//
//  1. config.yaml file (optional)
//  2. Environment variables, no prefix (e.g. WORKER_MAX_SIZE)
//  3. Built-in defaults
//
// This is the ambient configuration mechanism, not a pluggable "external
// configuration format" — spec.md §1 names that a Non-goal, so there is
// exactly one bundled shape and no format-plugin surface.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Worker   WorkerConfig   `mapstructure:"worker"`
	Static   StaticConfig   `mapstructure:"static"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// WorkerConfig contains default sizing for a Service's primary pool
// (spec.md §4.2: core size, max size, keep-alive duration).
type WorkerConfig struct {
	CoreSize  int           `mapstructure:"core_size"`
	MaxSize   int           `mapstructure:"max_size"`
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// StaticConfig sizes the registry's static pool backing the external
// run(task, session) gateway (spec.md §4.4).
type StaticConfig struct {
	MaxSize   int           `mapstructure:"max_size"`
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// ShutdownConfig contains ShutdownCoordinator tunables.
type ShutdownConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// HTTPConfig contains HttpPackage parser settings.
type HTTPConfig struct {
	LogTag string `mapstructure:"log_tag"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/servicecore")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional; defaults and env vars still apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Worker.MaxSize <= 0 {
		return fmt.Errorf("worker.max_size must be positive")
	}
	if c.Worker.CoreSize > c.Worker.MaxSize {
		return fmt.Errorf("worker.core_size must not exceed worker.max_size")
	}
	if c.Shutdown.PollInterval <= 0 {
		return fmt.Errorf("shutdown.poll_interval must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("worker.core_size", 4)
	v.SetDefault("worker.max_size", 64)
	v.SetDefault("worker.keep_alive", "30s")

	v.SetDefault("static.max_size", 16)
	v.SetDefault("static.keep_alive", "30s")

	v.SetDefault("shutdown.poll_interval", "100ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("http.log_tag", "httppkg")
}
