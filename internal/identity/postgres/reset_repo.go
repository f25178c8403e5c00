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

// ResetTokenRepository implements identity.ResetTokenRepository using
// PostgreSQL.
type ResetTokenRepository struct {
	pool poolIface
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(pool poolIface) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Create stores a new reset token.
func (r *ResetTokenRepository) Create(ctx context.Context, token *identity.ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reset_tokens (id, email, token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token.ID.String(), token.Email, token.Token, token.ExpiresAt)
	if err != nil {
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert reset token").
			With("email", token.Email).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves the newest token for an email.
func (r *ResetTokenRepository) GetByEmail(ctx context.Context, email string) (*identity.ResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, token, expires_at
		FROM reset_tokens
		WHERE LOWER(email) = LOWER($1)
		ORDER BY expires_at DESC
		LIMIT 1
	`, email)

	token, err := scanResetToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_FAILED").
			With("operation", "get reset token by email").
			With("email", email).
			Wrap(err)
	}
	return token, nil
}

// GetByToken retrieves a token by its secret value.
func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*identity.ResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, token, expires_at
		FROM reset_tokens
		WHERE token = $1
	`, token)

	record, err := scanResetToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_FAILED").
			With("operation", "get reset token by value").
			Wrap(err)
	}
	return record, nil
}

// Delete removes a token by id.
func (r *ResetTokenRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM reset_tokens WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("RESET_DELETE_FAILED").
			With("operation", "delete reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RESET_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// DeleteByEmail removes all tokens for an email. Zero rows is not an error.
func (r *ResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM reset_tokens WHERE LOWER(email) = LOWER($1)
	`, email)
	if err != nil {
		return oops.Code("RESET_DELETE_FAILED").
			With("operation", "delete reset tokens by email").
			With("email", email).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes tokens expired as of now and returns the count.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM reset_tokens WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, oops.Code("RESET_PURGE_FAILED").
			With("operation", "delete expired reset tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanResetToken(row pgx.Row) (*identity.ResetToken, error) {
	var (
		idStr     string
		email     string
		token     string
		expiresAt time.Time
	)

	if err := row.Scan(&idStr, &email, &token, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("RESET_SCAN_FAILED").
			With("operation", "scan reset token").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("RESET_INVALID_ID").
			With("operation", "parse reset token id").
			With("id", idStr).
			Wrap(err)
	}

	return &identity.ResetToken{
		ID:        id,
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Compile-time interface check.
var _ identity.ResetTokenRepository = (*ResetTokenRepository)(nil)
