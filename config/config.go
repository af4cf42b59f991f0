// Package config defines process configuration and its loading order.
//
// Precedence (low to high): defaults, YAML file named by CERTFLOW_CONFIG,
// environment variables with the CERTFLOW_ prefix.
package config

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address for health and metrics.
	Addr string `koanf:"addr"`

	// DatabaseURL points at the certification store. Empty disables
	// persistence-backed components (useful for the scenario driver).
	DatabaseURL string `koanf:"database_url"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkerCount sets the job dispatcher pool size.
	WorkerCount int `koanf:"worker_count"`

	// MessageTTLMS bounds how long an undelivered signal waits in the engine.
	MessageTTLMS int `koanf:"message_ttl_ms"`

	// RegistryTTLMS evicts visitor correlations older than this. Zero keeps
	// them until unregistered.
	RegistryTTLMS int `koanf:"registry_ttl_ms"`

	// EvictionIntervalMS is the sweep period when a registry TTL is set.
	EvictionIntervalMS int `koanf:"eviction_interval_ms"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		LogLevel:           "info",
		WorkerCount:        runtime.NumCPU(),
		MessageTTLMS:       10_000,
		RegistryTTLMS:      0,
		EvictionIntervalMS: 60_000,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("CERTFLOW_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// CERTFLOW_WORKER_COUNT -> worker_count, matching the koanf tags.
	envProvider := env.Provider("CERTFLOW_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "certflow_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: addr must not be empty")
	}
	if cfg.WorkerCount <= 0 {
		return nil, errors.New("config: worker_count must be positive")
	}
	return &cfg, nil
}

// MessageTTL returns the signal time-to-live as a duration.
func (c *Config) MessageTTL() time.Duration {
	return time.Duration(c.MessageTTLMS) * time.Millisecond
}

// RegistryTTL returns the correlation eviction age, zero when disabled.
func (c *Config) RegistryTTL() time.Duration {
	return time.Duration(c.RegistryTTLMS) * time.Millisecond
}

// EvictionInterval returns the eviction sweep period.
func (c *Config) EvictionInterval() time.Duration {
	return time.Duration(c.EvictionIntervalMS) * time.Millisecond
}
