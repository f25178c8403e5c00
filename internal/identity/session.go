// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

// SessionAssertion is an opaque binding between a session carrier and a
// principal's slug. The core never persists assertions; sealing and
// signing belong to the carrier.
type SessionAssertion struct {
	Slug string
}

// SessionCarrier is the transport-owned session store (typically a sealed
// cookie). The core treats the carried value as opaque beyond the slug
// binding.
type SessionCarrier interface {
	// Remember binds the carrier to the given slug.
	Remember(assertion SessionAssertion)

	// Forget clears the carrier.
	Forget()

	// Current returns the bound slug, or ok=false when no session exists.
	Current() (slug string, ok bool)
}
