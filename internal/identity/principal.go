// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the closed set of authorization roles.
type Role string

// Known roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the authoritative credentialed entity.
//
// Invariants: Email is unique, lowercase, and trimmed; Slug is unique and
// derived from DisplayName; Hash is always the codec output for the current
// Salt; Role is never empty; a validated principal has no outstanding
// verification code for its email.
type Principal struct {
	ID          ulid.ULID
	Email       string
	DisplayName string
	Slug        string
	Hash        []byte
	Salt        string
	Role        Role
	Validated   bool
	CreatedAt   time.Time
}

// NewPrincipal creates a validated Principal. The email is canonicalized to
// lowercase-trimmed form and the slug is derived from the display name.
func NewPrincipal(displayName, email string, hash []byte, salt string, role Role, validated bool, now time.Time) (*Principal, error) {
	displayName = strings.TrimSpace(displayName)
	email = CanonicalEmail(email)

	if displayName == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("display name cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("email cannot be empty")
	}
	if len(hash) == 0 {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("hash cannot be empty")
	}
	if salt == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("salt cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			With("role", string(role)).
			Errorf("role must be one of admin, user")
	}

	return &Principal{
		ID:          ulid.Make(),
		Email:       email,
		DisplayName: displayName,
		Slug:        Slugify(displayName),
		Hash:        hash,
		Salt:        salt,
		Role:        role,
		Validated:   validated,
		CreatedAt:   now,
	}, nil
}

// CanonicalEmail returns the canonical lowercase-trimmed form of an address.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Slugify derives the stable public handle from a display name: ASCII
// lowercase words joined with '_', collapsing runs of non-alphanumerics.
// CamelCase boundaries also split words. Idempotent: Slugify(Slugify(x))
// equals Slugify(x).
func Slugify(displayName string) string {
	var b strings.Builder
	b.Grow(len(displayName))

	runes := []rune(displayName)
	pendingSep := false
	for i, r := range runes {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			// camelCase boundary: upper following a lower or digit
			if i > 0 && !pendingSep {
				p := runes[i-1]
				if (p >= 'a' && p <= 'z') || (p >= '0' && p <= '9') {
					b.WriteByte('_')
				}
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// PrincipalRepository manages principal persistence.
type PrincipalRepository interface {
	// Insert stores a new principal. Fails with ErrConflict if the email
	// or slug already exists.
	Insert(ctx context.Context, p *Principal) error

	// GetByID retrieves a principal by id.
	GetByID(ctx context.Context, id ulid.ULID) (*Principal, error)

	// GetByEmail retrieves a principal by canonical email.
	GetByEmail(ctx context.Context, email string) (*Principal, error)

	// GetBySlug retrieves a principal by slug.
	GetBySlug(ctx context.Context, slug string) (*Principal, error)

	// Update rewrites an existing principal keyed on id, preserving
	// CreatedAt. Fails with ErrNotFound if absent.
	Update(ctx context.Context, p *Principal) error

	// UpdatePassword atomically replaces the (hash, salt) pair.
	UpdatePassword(ctx context.Context, id ulid.ULID, hash []byte, salt string) error

	// Delete removes a principal. Idempotent; returns rows removed.
	Delete(ctx context.Context, id ulid.ULID) (int64, error)

	// ListAll retrieves every principal.
	ListAll(ctx context.Context) ([]*Principal, error)

	// ListAdmins retrieves every principal with the admin role.
	ListAdmins(ctx context.Context) ([]*Principal, error)
}
