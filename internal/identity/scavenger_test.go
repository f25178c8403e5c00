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
	"go.uber.org/goleak"

	"github.com/peopledir/peopledir/internal/identity"
	"github.com/peopledir/peopledir/internal/identity/mocks"
)

func TestNewScavenger(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codeRepo := mocks.NewMockVerificationCodeRepository(t)
	tokenRepo := mocks.NewMockResetTokenRepository(t)
	codec := mocks.NewMockSecretCodec(t)
	clock := fixedClock(t, now)

	codes, err := identity.NewCodeIssuer(codeRepo, codec, clock, 0)
	require.NoError(t, err)
	tokens, err := identity.NewTokenIssuer(tokenRepo, codec, clock, 0)
	require.NoError(t, err)

	t.Run("requires code issuer", func(t *testing.T) {
		_, err := identity.NewScavenger(nil, tokens, 0, nil)
		assert.Error(t, err)
	})

	t.Run("requires token issuer", func(t *testing.T) {
		_, err := identity.NewScavenger(codes, nil, 0, nil)
		assert.Error(t, err)
	})

	t.Run("zero interval falls back to default", func(t *testing.T) {
		s, err := identity.NewScavenger(codes, tokens, 0, nil)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestScavengerRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codeRepo := mocks.NewMockVerificationCodeRepository(t)
	tokenRepo := mocks.NewMockResetTokenRepository(t)
	codec := mocks.NewMockSecretCodec(t)
	clock := fixedClock(t, now)

	codePurged := make(chan struct{}, 1)
	codeRepo.On("DeleteExpired", mock.Anything, now).
		Run(func(mock.Arguments) {
			select {
			case codePurged <- struct{}{}:
			default:
			}
		}).
		Return(int64(2), nil)
	tokenRepo.On("DeleteExpired", mock.Anything, now).Return(int64(0), nil)

	codes, err := identity.NewCodeIssuer(codeRepo, codec, clock, 24*time.Hour)
	require.NoError(t, err)
	tokens, err := identity.NewTokenIssuer(tokenRepo, codec, clock, 2*time.Hour)
	require.NoError(t, err)

	scavenger, err := identity.NewScavenger(codes, tokens, time.Hour, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		scavenger.Run(ctx)
	}()

	// The first purge fires immediately, before the first tick.
	select {
	case <-codePurged:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial purge")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for scavenger to stop")
	}
}

func TestScavengerRunToleratesPurgeFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codeRepo := mocks.NewMockVerificationCodeRepository(t)
	tokenRepo := mocks.NewMockResetTokenRepository(t)
	codec := mocks.NewMockSecretCodec(t)
	clock := fixedClock(t, now)

	tokenPurged := make(chan struct{}, 1)
	codeRepo.On("DeleteExpired", mock.Anything, now).Return(int64(0), assert.AnError)
	tokenRepo.On("DeleteExpired", mock.Anything, now).
		Run(func(mock.Arguments) {
			select {
			case tokenPurged <- struct{}{}:
			default:
			}
		}).
		Return(int64(1), nil)

	codes, err := identity.NewCodeIssuer(codeRepo, codec, clock, 24*time.Hour)
	require.NoError(t, err)
	tokens, err := identity.NewTokenIssuer(tokenRepo, codec, clock, 2*time.Hour)
	require.NoError(t, err)

	scavenger, err := identity.NewScavenger(codes, tokens, time.Hour, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		scavenger.Run(ctx)
	}()

	// The reset token purge still runs after the code purge fails.
	select {
	case <-tokenPurged:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for token purge")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for scavenger to stop")
	}
}
