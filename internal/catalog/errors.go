/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import "errors"

var (
	// ErrNotFound is returned when no catalog entry matches.
	ErrNotFound = errors.New("food not found")
	// ErrDuplicate is returned when a short code is already taken.
	ErrDuplicate = errors.New("short code already exists")
	// ErrInvalid wraps record validation failures.
	ErrInvalid = errors.New("invalid food record")
	// ErrInUse is returned when deleting a food other recipes depend on.
	ErrInUse = errors.New("food is used by other recipes")
	// ErrCycle is returned when recipe ingredients refer back to themselves.
	ErrCycle = errors.New("recipe ingredients form a cycle")
)
