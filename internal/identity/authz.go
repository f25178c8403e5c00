// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import "github.com/samber/oops"

// Actor identifies the caller of an authorization-gated operation.
type Actor struct {
	Slug string
	Role Role
}

// IsAdmin returns nil when the actor holds the admin role, or an
// AUTH_FORBIDDEN error.
func IsAdmin(actor Actor) error {
	if actor.Role == RoleAdmin {
		return nil
	}
	return oops.Code("AUTH_FORBIDDEN").
		With("actor", actor.Slug).
		Errorf("admin role required")
}

// IsSelfOrAdmin returns nil when the actor is the target or holds the admin
// role, or an AUTH_FORBIDDEN error.
func IsSelfOrAdmin(actor Actor, targetSlug string) error {
	if actor.Slug == targetSlug || actor.Role == RoleAdmin {
		return nil
	}
	return oops.Code("AUTH_FORBIDDEN").
		With("actor", actor.Slug).
		With("target", targetSlug).
		Errorf("actor must be the target or an admin")
}
