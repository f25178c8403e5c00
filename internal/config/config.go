// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

// Package config loads service configuration from a YAML file and command
// line flags. Secrets (database URL, bootstrap admin password) come from
// the environment and never from config files.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// AdminConfig identifies the bootstrap administrator. The password is read
// from the ADMIN_PASSWORD environment variable.
type AdminConfig struct {
	Name  string `koanf:"name"`
	Email string `koanf:"email"`
}

// Config holds the service configuration.
type Config struct {
	AppName          string        `koanf:"app_name"`
	BaseURL          string        `koanf:"base_url"`
	LogFormat        string        `koanf:"log_format"`
	MetricsAddr      string        `koanf:"metrics_addr"`
	VerificationTTL  time.Duration `koanf:"verification_ttl"`
	ResetTTL         time.Duration `koanf:"reset_ttl"`
	ScavengeInterval time.Duration `koanf:"scavenge_interval"`
	Admin            AdminConfig   `koanf:"admin"`
}

// Default returns the configuration defaults. File and flag values overlay
// these.
func Default() Config {
	return Config{
		AppName:          "People Directory",
		LogFormat:        "json",
		MetricsAddr:      "127.0.0.1:9100",
		VerificationTTL:  24 * time.Hour,
		ResetTTL:         2 * time.Hour,
		ScavengeInterval: time.Hour,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// an optional flag set, in that precedence order.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.AppName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("app_name is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.VerificationTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("verification_ttl must be positive")
	}
	if c.ResetTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("reset_ttl must be positive")
	}
	if c.ScavengeInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("scavenge_interval must be positive")
	}
	return nil
}
