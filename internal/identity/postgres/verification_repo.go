// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/peopledir/peopledir/internal/identity"
)

// VerificationCodeRepository implements identity.VerificationCodeRepository
// using PostgreSQL.
type VerificationCodeRepository struct {
	pool poolIface
}

// NewVerificationCodeRepository creates a new VerificationCodeRepository.
func NewVerificationCodeRepository(pool poolIface) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: pool}
}

// Create stores a new verification code.
func (r *VerificationCodeRepository) Create(ctx context.Context, code *identity.VerificationCode) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verification_codes (id, email, code, expires_at)
		VALUES ($1, $2, $3, $4)
	`, code.ID.String(), code.Email, code.Code, code.ExpiresAt)
	if err != nil {
		return oops.Code("VERIFICATION_CREATE_FAILED").
			With("operation", "insert verification code").
			With("email", code.Email).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves the newest code for an email.
func (r *VerificationCodeRepository) GetByEmail(ctx context.Context, email string) (*identity.VerificationCode, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, code, expires_at
		FROM verification_codes
		WHERE LOWER(email) = LOWER($1)
		ORDER BY expires_at DESC
		LIMIT 1
	`, email)

	code, err := scanVerificationCode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("VERIFICATION_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("VERIFICATION_GET_FAILED").
			With("operation", "get verification code by email").
			With("email", email).
			Wrap(err)
	}
	return code, nil
}

// Delete removes a code by id.
func (r *VerificationCodeRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM verification_codes WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("VERIFICATION_DELETE_FAILED").
			With("operation", "delete verification code").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("VERIFICATION_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// DeleteByEmail removes all codes for an email. Zero rows is not an error.
func (r *VerificationCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM verification_codes WHERE LOWER(email) = LOWER($1)
	`, email)
	if err != nil {
		return oops.Code("VERIFICATION_DELETE_FAILED").
			With("operation", "delete verification codes by email").
			With("email", email).
			Wrap(err)
	}
	return nil
}

// Consume deletes the code and marks the principal validated in a single
// transaction, so a crash cannot leave a validated principal with an
// outstanding code or vice versa.
func (r *VerificationCodeRepository) Consume(ctx context.Context, codeID, principalID ulid.ULID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("VERIFICATION_CONSUME_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		DELETE FROM verification_codes WHERE id = $1
	`, codeID.String())
	if err != nil {
		return oops.Code("VERIFICATION_CONSUME_FAILED").
			With("operation", "delete verification code").
			With("id", codeID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("VERIFICATION_NOT_FOUND").
			With("id", codeID.String()).
			Wrap(identity.ErrNotFound)
	}

	result, err = tx.Exec(ctx, `
		UPDATE principals SET validated = TRUE WHERE id = $1
	`, principalID.String())
	if err != nil {
		return oops.Code("VERIFICATION_CONSUME_FAILED").
			With("operation", "mark principal validated").
			With("principal_id", principalID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("principal_id", principalID.String()).
			Wrap(identity.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("VERIFICATION_CONSUME_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes codes expired as of now and returns the count.
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM verification_codes WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, oops.Code("VERIFICATION_PURGE_FAILED").
			With("operation", "delete expired verification codes").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanVerificationCode(row pgx.Row) (*identity.VerificationCode, error) {
	var (
		idStr     string
		email     string
		code      string
		expiresAt time.Time
	)

	if err := row.Scan(&idStr, &email, &code, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("VERIFICATION_SCAN_FAILED").
			With("operation", "scan verification code").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("VERIFICATION_INVALID_ID").
			With("operation", "parse verification code id").
			With("id", idStr).
			Wrap(err)
	}

	return &identity.VerificationCode{
		ID:        id,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// Compile-time interface check.
var _ identity.VerificationCodeRepository = (*VerificationCodeRepository)(nil)
