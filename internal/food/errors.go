/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import "errors"

var (
	ErrServingSizeNotSet = errors.New("serving size not set")
	ErrServingsNotSet    = errors.New("servings not set")
	ErrTimeNotSet        = errors.New("time not set")
	ErrNutritionNotSet   = errors.New("nutrition not set")
	ErrNegativeTime      = errors.New("preparation time must not be negative")
	ErrTimeTooLarge      = errors.New("preparation time too large")
	ErrInvalidRat        = errors.New("invalid rational value")
)
