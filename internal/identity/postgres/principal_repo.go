// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/peopledir/peopledir/internal/identity"
)

// PrincipalRepository implements identity.PrincipalRepository using
// PostgreSQL.
type PrincipalRepository struct {
	pool poolIface
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(pool poolIface) *PrincipalRepository {
	return &PrincipalRepository{pool: pool}
}

const principalColumns = `id, email, display_name, slug, hash, salt, role, validated, created_at`

// Insert stores a new principal. A duplicate email or slug maps to
// identity.ErrConflict.
func (r *PrincipalRepository) Insert(ctx context.Context, p *identity.Principal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO principals (
			id, email, display_name, slug, hash, salt, role, validated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		p.ID.String(),
		p.Email,
		p.DisplayName,
		p.Slug,
		p.Hash,
		p.Salt,
		string(p.Role),
		p.Validated,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("PRINCIPAL_CONFLICT").
				With("email", p.Email).
				With("slug", p.Slug).
				Wrap(identity.ErrConflict)
		}
		return oops.Code("PRINCIPAL_INSERT_FAILED").
			With("operation", "insert principal").
			With("slug", p.Slug).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a principal by ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id ulid.ULID) (*identity.Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE id = $1
	`, id.String())

	p, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_ID_FAILED").
			With("operation", "get principal by id").
			With("id", id.String()).
			Wrap(err)
	}
	return p, nil
}

// GetByEmail retrieves a principal by email (case-insensitive).
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE LOWER(email) = LOWER($1)
	`, email)

	p, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_EMAIL_FAILED").
			With("operation", "get principal by email").
			With("email", email).
			Wrap(err)
	}
	return p, nil
}

// GetBySlug retrieves a principal by slug.
func (r *PrincipalRepository) GetBySlug(ctx context.Context, slug string) (*identity.Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE slug = $1
	`, slug)

	p, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("slug", slug).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_SLUG_FAILED").
			With("operation", "get principal by slug").
			With("slug", slug).
			Wrap(err)
	}
	return p, nil
}

// Update updates an existing principal.
func (r *PrincipalRepository) Update(ctx context.Context, p *identity.Principal) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE principals SET
			email = $2,
			display_name = $3,
			slug = $4,
			role = $5,
			validated = $6
		WHERE id = $1
	`,
		p.ID.String(),
		p.Email,
		p.DisplayName,
		p.Slug,
		string(p.Role),
		p.Validated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("PRINCIPAL_CONFLICT").
				With("email", p.Email).
				With("slug", p.Slug).
				Wrap(identity.ErrConflict)
		}
		return oops.Code("PRINCIPAL_UPDATE_FAILED").
			With("operation", "update principal").
			With("id", p.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", p.ID.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the hash and salt pair for a principal in a
// single statement.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id ulid.ULID, hash []byte, salt string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE principals SET hash = $2, salt = $3
		WHERE id = $1
	`, id.String(), hash, salt)
	if err != nil {
		return oops.Code("PRINCIPAL_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// Delete removes a principal and returns the number of rows removed.
// Deleting an absent principal is not an error; it returns zero.
func (r *PrincipalRepository) Delete(ctx context.Context, id ulid.ULID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM principals WHERE id = $1
	`, id.String())
	if err != nil {
		return 0, oops.Code("PRINCIPAL_DELETE_FAILED").
			With("operation", "delete principal").
			With("id", id.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// ListAll retrieves all principals ordered by display name.
func (r *PrincipalRepository) ListAll(ctx context.Context) ([]*identity.Principal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		ORDER BY display_name
	`)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_LIST_FAILED").
			With("operation", "list principals").
			Wrap(err)
	}
	defer rows.Close()

	return collectPrincipals(rows)
}

// ListAdmins retrieves all principals holding the admin role.
func (r *PrincipalRepository) ListAdmins(ctx context.Context) ([]*identity.Principal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE role = 'admin'
		ORDER BY display_name
	`)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_LIST_FAILED").
			With("operation", "list admins").
			Wrap(err)
	}
	defer rows.Close()

	return collectPrincipals(rows)
}

func collectPrincipals(rows pgx.Rows) ([]*identity.Principal, error) {
	var principals []*identity.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, oops.Code("PRINCIPAL_SCAN_FAILED").
				With("operation", "scan principal row").
				Wrap(err)
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PRINCIPAL_LIST_FAILED").
			With("operation", "iterate principals").
			Wrap(err)
	}
	return principals, nil
}

// scanPrincipal scans a single row into a Principal.
// Callers are responsible for handling pgx.ErrNoRows.
func scanPrincipal(row pgx.Row) (*identity.Principal, error) {
	var (
		idStr       string
		email       string
		displayName string
		slug        string
		hash        []byte
		salt        string
		role        string
		validated   bool
		createdAt   time.Time
	)

	err := row.Scan(
		&idStr,
		&email,
		&displayName,
		&slug,
		&hash,
		&salt,
		&role,
		&validated,
		&createdAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("PRINCIPAL_SCAN_FAILED").
			With("operation", "scan principal").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_INVALID_ID").
			With("operation", "parse principal id").
			With("id", idStr).
			Wrap(err)
	}

	return &identity.Principal{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		Slug:        slug,
		Hash:        hash,
		Salt:        salt,
		Role:        identity.Role(role),
		Validated:   validated,
		CreatedAt:   createdAt,
	}, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ identity.PrincipalRepository = (*PrincipalRepository)(nil)
