// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledir/peopledir/internal/identity"
	"github.com/peopledir/peopledir/pkg/errutil"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"space separated words", "Ada Lovelace", "ada_lovelace"},
		{"short trailing word", "Ada L", "ada_l"},
		{"camelCase boundary", "AdaLovelace", "ada_lovelace"},
		{"surrounding whitespace", "  Ada   Lovelace  ", "ada_lovelace"},
		{"punctuation collapses", "Ada-Lovelace, 2nd", "ada_lovelace_2nd"},
		{"digits kept", "Agent 99", "agent_99"},
		{"already slugged", "ada_lovelace", "ada_lovelace"},
		{"only punctuation", "!!!", ""},
		{"single word", "Hopper", "hopper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.Slugify(tt.in))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		slug := identity.Slugify("Grace Brewster Hopper")
		assert.Equal(t, slug, identity.Slugify(slug))
	})
}

func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", identity.CanonicalEmail("  Ada@Example.COM "))
	assert.Equal(t, "", identity.CanonicalEmail("   "))
}

func TestNewPrincipal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := []byte("$argon2id$fake")

	t.Run("canonicalizes and derives slug", func(t *testing.T) {
		p, err := identity.NewPrincipal(" Ada Lovelace ", " Ada@Example.COM ", hash, "somesalt", identity.RoleUser, false, now)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", p.DisplayName)
		assert.Equal(t, "ada@example.com", p.Email)
		assert.Equal(t, "ada_lovelace", p.Slug)
		assert.Equal(t, identity.RoleUser, p.Role)
		assert.False(t, p.Validated)
		assert.Equal(t, now, p.CreatedAt)
		assert.NotZero(t, p.ID)
	})

	t.Run("distinct principals get distinct ids", func(t *testing.T) {
		p1, err := identity.NewPrincipal("Ada", "ada@example.com", hash, "somesalt", identity.RoleUser, false, now)
		require.NoError(t, err)
		p2, err := identity.NewPrincipal("Ada", "ada@example.com", hash, "somesalt", identity.RoleUser, false, now)
		require.NoError(t, err)
		assert.NotEqual(t, p1.ID, p2.ID)
	})

	t.Run("rejects blank display name", func(t *testing.T) {
		_, err := identity.NewPrincipal("   ", "ada@example.com", hash, "somesalt", identity.RoleUser, false, now)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("rejects blank email", func(t *testing.T) {
		_, err := identity.NewPrincipal("Ada", "   ", hash, "somesalt", identity.RoleUser, false, now)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := identity.NewPrincipal("Ada", "ada@example.com", nil, "somesalt", identity.RoleUser, false, now)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("rejects empty salt", func(t *testing.T) {
		_, err := identity.NewPrincipal("Ada", "ada@example.com", hash, "", identity.RoleUser, false, now)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := identity.NewPrincipal("Ada", "ada@example.com", hash, "somesalt", identity.Role("owner"), false, now)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})
}

func TestRoleValid(t *testing.T) {
	assert.True(t, identity.RoleAdmin.Valid())
	assert.True(t, identity.RoleUser.Valid())
	assert.False(t, identity.Role("").Valid())
	assert.False(t, identity.Role("owner").Valid())
}
