// Package services defines the business logic for frame-data queries and
// matchmaking. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors cover structural preconditions of the inbound message, not
// user mistakes: lookup misses and bad command arguments are answered with
// user-facing reply strings, never errors. Translation of these sentinels
// into reply text happens in the dispatcher.
package services

import "errors"

var (
	// ErrGroupRequired is returned when a matchmaking operation arrives
	// outside a group scope (or from a channel whose group id cannot be
	// resolved to a numeric key).
	ErrGroupRequired = errors.New("group scope required")

	// ErrUserRequired is returned when the sender's numeric user id is
	// unavailable, which makes matchmaking rows unaddressable.
	ErrUserRequired = errors.New("user id required")
)
