// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledir/peopledir/internal/config"
	"github.com/peopledir/peopledir/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "People Directory", cfg.AppName)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, 24*time.Hour, cfg.VerificationTTL)
	assert.Equal(t, 2*time.Hour, cfg.ResetTTL)
	assert.Equal(t, time.Hour, cfg.ScavengeInterval)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
app_name: Example Directory
base_url: https://directory.example.com
log_format: text
verification_ttl: 12h
admin:
  name: Root Admin
  email: root@example.com
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "Example Directory", cfg.AppName)
	assert.Equal(t, "https://directory.example.com", cfg.BaseURL)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 12*time.Hour, cfg.VerificationTTL)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 2*time.Hour, cfg.ResetTTL)
	assert.Equal(t, "Root Admin", cfg.Admin.Name)
	assert.Equal(t, "root@example.com", cfg.Admin.Email)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
log_format: text
metrics_addr: 127.0.0.1:9200
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log_format", "json", "")
	flags.String("metrics_addr", "127.0.0.1:9100", "")
	require.NoError(t, flags.Parse([]string{"--log_format=json"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat, "explicit flag wins over file")
	assert.Equal(t, "127.0.0.1:9200", cfg.MetricsAddr, "unset flag defers to file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty app name", func(c *config.Config) { c.AppName = "" }},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"non-positive verification ttl", func(c *config.Config) { c.VerificationTTL = 0 }},
		{"non-positive reset ttl", func(c *config.Config) { c.ResetTTL = -time.Minute }},
		{"non-positive scavenge interval", func(c *config.Config) { c.ScavengeInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			errutil.AssertErrorCode(t, cfg.Validate(), "CONFIG_INVALID")
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, config.Default().Validate())
	})
}
