// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a uniqueness invariant (email or slug)
// would be violated.
var ErrConflict = errors.New("conflict")
