// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	// ResetTokenLength is minted undashed for URL embedding.
	ResetTokenLength = 36
	// DefaultResetTTL is how long a token is honored after issuance.
	DefaultResetTTL = 2 * time.Hour
)

// ResetToken is a short-lived capability authorizing a password change.
type ResetToken struct {
	ID        ulid.ULID
	Email     string
	Token     string
	ExpiresAt time.Time
}

// NewResetToken binds a minted token to an email with an expiry.
func NewResetToken(email, token string, expiresAt time.Time) (*ResetToken, error) {
	if email == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("email cannot be empty")
	}
	if token == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("token cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("expiry time cannot be zero")
	}
	return &ResetToken{
		ID:        ulid.Make(),
		Email:     CanonicalEmail(email),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// IsExpiredAt reports whether the token would be expired at the given time.
func (r *ResetToken) IsExpiredAt(t time.Time) bool {
	return t.After(r.ExpiresAt)
}

// ResetTokenRepository manages reset token persistence.
type ResetTokenRepository interface {
	// Create stores a new reset token.
	Create(ctx context.Context, token *ResetToken) error

	// GetByEmail retrieves the newest token for an email.
	GetByEmail(ctx context.Context, email string) (*ResetToken, error)

	// GetByToken retrieves a token by its secret value.
	GetByToken(ctx context.Context, token string) (*ResetToken, error)

	// Delete removes a token by id.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByEmail removes all tokens for an email. Zero rows is not an
	// error.
	DeleteByEmail(ctx context.Context, email string) error

	// DeleteExpired removes tokens expired as of now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenIssuer owns the reset token lifecycle, mirroring CodeIssuer in its
// own namespace.
type TokenIssuer struct {
	repo  ResetTokenRepository
	codec SecretCodec
	clock Clock
	ttl   time.Duration
}

// NewTokenIssuer creates a TokenIssuer. A non-positive ttl falls back to
// DefaultResetTTL.
func NewTokenIssuer(repo ResetTokenRepository, codec SecretCodec, clock Clock, ttl time.Duration) (*TokenIssuer, error) {
	if repo == nil {
		return nil, oops.Errorf("reset token repository is required")
	}
	if codec == nil {
		return nil, oops.Errorf("secret codec is required")
	}
	if clock == nil {
		return nil, oops.Errorf("clock is required")
	}
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &TokenIssuer{repo: repo, codec: codec, clock: clock, ttl: ttl}, nil
}

// Issue mints a fresh token for the email, superseding any existing one.
func (i *TokenIssuer) Issue(ctx context.Context, email string) (*ResetToken, error) {
	token, err := i.codec.MintCode(ResetTokenLength, false)
	if err != nil {
		return nil, oops.Code("RESET_ISSUE_FAILED").
			With("operation", "MintCode").
			Wrap(err)
	}

	record, err := NewResetToken(email, token, i.clock.Now().Add(i.ttl))
	if err != nil {
		return nil, oops.Code("RESET_ISSUE_FAILED").
			With("operation", "NewResetToken").
			Wrap(err)
	}

	if err := i.repo.DeleteByEmail(ctx, record.Email); err != nil {
		return nil, oops.Code("RESET_ISSUE_FAILED").
			With("operation", "DeleteByEmail").
			Wrap(err)
	}
	if err := i.repo.Create(ctx, record); err != nil {
		return nil, oops.Code("RESET_ISSUE_FAILED").
			With("operation", "Create").
			Wrap(err)
	}

	return record, nil
}

// Lookup returns the token record for a secret value, or ErrNotFound.
func (i *TokenIssuer) Lookup(ctx context.Context, token string) (*ResetToken, error) {
	return i.repo.GetByToken(ctx, token)
}

// Discard removes a consumed token by id.
func (i *TokenIssuer) Discard(ctx context.Context, id ulid.ULID) error {
	return i.repo.Delete(ctx, id)
}

// DiscardByEmail removes any outstanding tokens for an email.
func (i *TokenIssuer) DiscardByEmail(ctx context.Context, email string) error {
	return i.repo.DeleteByEmail(ctx, CanonicalEmail(email))
}

// PurgeExpired removes tokens expired as of the clock's now.
func (i *TokenIssuer) PurgeExpired(ctx context.Context) (int64, error) {
	return i.repo.DeleteExpired(ctx, i.clock.Now())
}
