// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/peopledir/peopledir/internal/identity"
	"github.com/peopledir/peopledir/internal/identity/mocks"
	"github.com/peopledir/peopledir/pkg/errutil"
)

func TestTokenIssuerIssue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("mints an undashed token with the reset ttl", func(t *testing.T) {
		repo := mocks.NewMockResetTokenRepository(t)
		codec := mocks.NewMockSecretCodec(t)
		clock := fixedClock(t, now)

		codec.On("MintCode", identity.ResetTokenLength, false).Return("abc123resettoken", nil)
		repo.On("DeleteByEmail", ctx, "ada@example.com").Return(nil)
		repo.On("Create", ctx, mock.MatchedBy(func(tok *identity.ResetToken) bool {
			return tok.Email == "ada@example.com" &&
				tok.Token == "abc123resettoken" &&
				tok.ExpiresAt.Equal(now.Add(2*time.Hour))
		})).Return(nil)

		issuer, err := identity.NewTokenIssuer(repo, codec, clock, 2*time.Hour)
		require.NoError(t, err)

		token, err := issuer.Issue(ctx, "Ada@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "abc123resettoken", token.Token)
		assert.Equal(t, "ada@example.com", token.Email)
	})

	t.Run("store failure aborts issue", func(t *testing.T) {
		repo := mocks.NewMockResetTokenRepository(t)
		codec := mocks.NewMockSecretCodec(t)
		clock := fixedClock(t, now)

		codec.On("MintCode", identity.ResetTokenLength, false).Return("abc123resettoken", nil)
		repo.On("DeleteByEmail", ctx, "ada@example.com").Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.ResetToken")).Return(assert.AnError)

		issuer, err := identity.NewTokenIssuer(repo, codec, clock, 2*time.Hour)
		require.NoError(t, err)

		_, err = issuer.Issue(ctx, "ada@example.com")
		errutil.AssertErrorCode(t, err, "RESET_ISSUE_FAILED")
	})
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := identity.NewResetToken("ada@example.com", "abc123", now.Add(2*time.Hour))
	require.NoError(t, err)

	assert.False(t, token.IsExpiredAt(now))
	assert.False(t, token.IsExpiredAt(now.Add(2*time.Hour)))
	assert.True(t, token.IsExpiredAt(now.Add(2*time.Hour+time.Second)))
}

func TestTokenIssuerDiscard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := mocks.NewMockResetTokenRepository(t)
	codec := mocks.NewMockSecretCodec(t)
	clock := fixedClock(t, now)

	repo.On("DeleteByEmail", ctx, "ada@example.com").Return(nil)

	issuer, err := identity.NewTokenIssuer(repo, codec, clock, 2*time.Hour)
	require.NoError(t, err)

	assert.NoError(t, issuer.DiscardByEmail(ctx, "Ada@Example.com"))
}

func TestTokenIssuerPurgeExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := mocks.NewMockResetTokenRepository(t)
	codec := mocks.NewMockSecretCodec(t)
	clock := fixedClock(t, now)

	repo.On("DeleteExpired", ctx, now).Return(int64(2), nil)

	issuer, err := identity.NewTokenIssuer(repo, codec, clock, 2*time.Hour)
	require.NoError(t, err)

	purged, err := issuer.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}
