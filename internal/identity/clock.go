// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import "time"

// Clock is the wall-clock source for expiry decisions. All comparisons in
// the subsystem happen in UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the process wall clock in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Compile-time interface check.
var _ Clock = SystemClock{}
