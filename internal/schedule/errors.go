/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import "errors"

var (
	// ErrConflict is returned when a requested slot overlaps an active item
	// on the same channel.
	ErrConflict = errors.New("schedule slot conflicts with an existing item")

	// ErrNotFound is returned when the referenced schedule item does not
	// exist.
	ErrNotFound = errors.New("schedule item not found")

	// ErrValidation is returned for malformed input, such as an end time at
	// or before the start time.
	ErrValidation = errors.New("invalid schedule request")
)
