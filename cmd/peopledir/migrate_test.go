// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_Properties(t *testing.T) {
	cmd := NewMigrateCmd()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "migration", "Short description should mention migration")

	var subs []string
	for _, sub := range cmd.Commands() {
		subs = append(subs, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status", "force"}, subs)
}

func TestMigrateUp_NoDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"migrate", "up"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error when DATABASE_URL is not set")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestMigrateUp_InvalidDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "invalid://not-a-real-db")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"migrate", "up"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error with invalid DATABASE_URL")
}

func TestMigrateDown_RequiresConfirmation(t *testing.T) {
	// The down command must refuse to run without --yes even before it
	// touches the database.
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/peopledir")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"migrate", "down"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestMigrateForce_RejectsNonNumericVersion(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/peopledir")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"migrate", "force", "abc"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error for non-numeric version")
}

func TestMigrateForce_RejectsNegativeVersion(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/peopledir")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"migrate", "force", "--", "-1"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error for negative version")
	assert.Contains(t, err.Error(), "non-negative")
}

func TestServeCommand_Properties(t *testing.T) {
	cmd := NewServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Contains(t, cmd.Long, "PostgreSQL")
	for _, flag := range []string{"app_name", "base_url", "log_format", "metrics_addr", "verification_ttl", "reset_ttl", "scavenge_interval"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "serve missing --%s flag", flag)
	}
}
