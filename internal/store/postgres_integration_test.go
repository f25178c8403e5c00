//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/peopledir/peopledir/internal/identity"
	identitypg "github.com/peopledir/peopledir/internal/identity/postgres"
	"github.com/peopledir/peopledir/internal/store"
)

// startPostgres runs a disposable PostgreSQL container with the schema
// applied and returns a connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("peopledir_test"),
		postgres.WithUsername("peopledir"),
		postgres.WithPassword("peopledir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := store.NewMigrator(connStr)
	require.NoError(t, err)
	defer migrator.Close()
	require.NoError(t, migrator.Up())

	return connStr
}

func TestIdentityRepositories_Integration(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(t)

	pool, err := store.Connect(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	principals := identitypg.NewPrincipalRepository(pool)
	codes := identitypg.NewVerificationCodeRepository(pool)
	tokens := identitypg.NewResetTokenRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	p, err := identity.NewPrincipal("Ada Lovelace", "Ada@Example.com", []byte("$argon2id$hash"), "saltsaltsalt", identity.RoleUser, false, now)
	require.NoError(t, err)
	require.NoError(t, principals.Insert(ctx, p))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup, err := identity.NewPrincipal("Ada L", "ada@example.com", []byte("$argon2id$hash"), "saltsaltsalt", identity.RoleUser, false, now)
		require.NoError(t, err)
		err = principals.Insert(ctx, dup)
		assert.ErrorIs(t, err, identity.ErrConflict)
	})

	t.Run("lookup round trip", func(t *testing.T) {
		got, err := principals.GetBySlug(ctx, "ada_lovelace")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, "ada@example.com", got.Email, "email is stored canonicalized")

		byEmail, err := principals.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, p.ID, byEmail.ID, "email lookup is case-insensitive")
	})

	t.Run("verification code consume validates principal", func(t *testing.T) {
		code, err := identity.NewVerificationCode(p.Email, "hT3k-9", now.Add(24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, codes.Create(ctx, code))

		require.NoError(t, codes.Consume(ctx, code.ID, p.ID))

		validated, err := principals.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, validated.Validated)

		_, err = codes.GetByEmail(ctx, p.Email)
		assert.ErrorIs(t, err, identity.ErrNotFound, "consumed code is gone")
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		token, err := identity.NewResetToken(p.Email, "abc123resettokenabc123resettokenabcd", now.Add(2*time.Hour))
		require.NoError(t, err)
		require.NoError(t, tokens.Create(ctx, token))

		got, err := tokens.GetByToken(ctx, token.Token)
		require.NoError(t, err)
		assert.Equal(t, p.Email, got.Email)

		require.NoError(t, tokens.DeleteByEmail(ctx, p.Email))
		_, err = tokens.GetByToken(ctx, token.Token)
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("expired secrets purge", func(t *testing.T) {
		expired, err := identity.NewVerificationCode("old@example.com", "zZ9q-1", now.Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, codes.Create(ctx, expired))

		purged, err := codes.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, purged, int64(1))
	})

	t.Run("delete principal", func(t *testing.T) {
		removed, err := principals.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		removed, err = principals.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), removed, "delete is idempotent")
	})
}
