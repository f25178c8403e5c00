// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

// Package identity is the authoritative credential subsystem: the store of
// principals and the state machine by which an email-addressable principal
// is registered, verified, authenticated, re-credentialed, and retired.
//
// # Domain Types
//
// Domain types (Principal, VerificationCode, ResetToken) should be created
// through their constructors:
//   - NewPrincipal - derives the slug and stamps creation time
//   - NewVerificationCode / NewResetToken - bind a minted secret to an
//     email with an expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service coordinates the register/verify/login/reset/profile lifecycle.
// CodeIssuer and TokenIssuer own the one-time secret lifecycles, including
// the at-most-one-active-secret-per-email invariant. All cryptographic
// choices live in SecretCodec so algorithm migration stays local.
//
// External collaborators (persistence, mail delivery, wall clock, session
// carrier) are interfaces; the package never reaches for globals.
package identity
