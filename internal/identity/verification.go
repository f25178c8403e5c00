// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Verification code configuration.
const (
	// VerificationCodeLength is minted dashed, e.g. "hT3k-9".
	VerificationCodeLength = 5
	// DefaultVerificationTTL is how long a code is honored after issuance.
	DefaultVerificationTTL = 24 * time.Hour
)

// VerificationCode is a short-lived proof of email ownership.
type VerificationCode struct {
	ID        ulid.ULID
	Email     string
	Code      string
	ExpiresAt time.Time
}

// NewVerificationCode binds a minted code to an email with an expiry.
func NewVerificationCode(email, code string, expiresAt time.Time) (*VerificationCode, error) {
	if email == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("email cannot be empty")
	}
	if code == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("code cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("expiry time cannot be zero")
	}
	return &VerificationCode{
		ID:        ulid.Make(),
		Email:     CanonicalEmail(email),
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// IsExpiredAt reports whether the code would be expired at the given time.
func (v *VerificationCode) IsExpiredAt(t time.Time) bool {
	return t.After(v.ExpiresAt)
}

// VerificationCodeRepository manages verification code persistence.
type VerificationCodeRepository interface {
	// Create stores a new verification code.
	Create(ctx context.Context, code *VerificationCode) error

	// GetByEmail retrieves the newest code for an email.
	GetByEmail(ctx context.Context, email string) (*VerificationCode, error)

	// Delete removes a code by id.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByEmail removes all codes for an email. Zero rows is not an
	// error.
	DeleteByEmail(ctx context.Context, email string) error

	// Consume deletes the code and marks the principal validated in a
	// single transaction.
	Consume(ctx context.Context, codeID, principalID ulid.ULID) error

	// DeleteExpired removes codes expired as of now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CodeIssuer owns the verification code lifecycle: minting, the
// one-active-code-per-email invariant, and expiry-driven cleanup.
type CodeIssuer struct {
	repo  VerificationCodeRepository
	codec SecretCodec
	clock Clock
	ttl   time.Duration
}

// NewCodeIssuer creates a CodeIssuer. A non-positive ttl falls back to
// DefaultVerificationTTL.
func NewCodeIssuer(repo VerificationCodeRepository, codec SecretCodec, clock Clock, ttl time.Duration) (*CodeIssuer, error) {
	if repo == nil {
		return nil, oops.Errorf("verification code repository is required")
	}
	if codec == nil {
		return nil, oops.Errorf("secret codec is required")
	}
	if clock == nil {
		return nil, oops.Errorf("clock is required")
	}
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &CodeIssuer{repo: repo, codec: codec, clock: clock, ttl: ttl}, nil
}

// Issue mints a fresh code for the email, superseding any existing one.
func (i *CodeIssuer) Issue(ctx context.Context, email string) (*VerificationCode, error) {
	code, err := i.codec.MintCode(VerificationCodeLength, true)
	if err != nil {
		return nil, oops.Code("VERIFICATION_ISSUE_FAILED").
			With("operation", "MintCode").
			Wrap(err)
	}

	record, err := NewVerificationCode(email, code, i.clock.Now().Add(i.ttl))
	if err != nil {
		return nil, oops.Code("VERIFICATION_ISSUE_FAILED").
			With("operation", "NewVerificationCode").
			Wrap(err)
	}

	// Supersede before insert so at most one code is active per email.
	if err := i.repo.DeleteByEmail(ctx, record.Email); err != nil {
		return nil, oops.Code("VERIFICATION_ISSUE_FAILED").
			With("operation", "DeleteByEmail").
			Wrap(err)
	}
	if err := i.repo.Create(ctx, record); err != nil {
		return nil, oops.Code("VERIFICATION_ISSUE_FAILED").
			With("operation", "Create").
			Wrap(err)
	}

	return record, nil
}

// Active returns the active code for an email, or ErrNotFound.
func (i *CodeIssuer) Active(ctx context.Context, email string) (*VerificationCode, error) {
	return i.repo.GetByEmail(ctx, CanonicalEmail(email))
}

// Consume deletes a code and marks the principal validated atomically.
func (i *CodeIssuer) Consume(ctx context.Context, codeID, principalID ulid.ULID) error {
	return i.repo.Consume(ctx, codeID, principalID)
}

// Discard removes any outstanding codes for an email.
func (i *CodeIssuer) Discard(ctx context.Context, email string) error {
	return i.repo.DeleteByEmail(ctx, CanonicalEmail(email))
}

// PurgeExpired removes codes expired as of the clock's now.
func (i *CodeIssuer) PurgeExpired(ctx context.Context) (int64, error) {
	return i.repo.DeleteExpired(ctx, i.clock.Now())
}
