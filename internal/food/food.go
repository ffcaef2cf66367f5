/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package food describes real-world foods: single-ingredient raw foods and
// composite recipes. The scheduler only needs a food's preparation duration
// and the ability to copy it.
package food

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

// Kind distinguishes raw foods from recipes.
type Kind string

const (
	KindRaw    Kind = "raw"
	KindRecipe Kind = "recipe"
)

// Food is a preparation task that can be placed on a day's timeline.
type Food interface {
	Kind() Kind
	Name() IString
	// PrepTime is the exact preparation time in minutes.
	PrepTime() *big.Rat
	// Duration is PrepTime converted to whole seconds, truncated.
	Duration() time.Duration
	// Clone returns an independent deep copy.
	Clone() Food
}

var sixty = big.NewRat(60, 1)

// maxSeconds is the largest whole-second count a time.Duration can hold.
var maxSeconds = big.NewInt(math.MaxInt64 / int64(time.Second))

// CheckPrepTime rejects negative times and times too long for a Duration.
func CheckPrepTime(minutes *big.Rat) error {
	if minutes == nil {
		return nil
	}
	if minutes.Sign() < 0 {
		return ErrNegativeTime
	}
	if wholeSeconds(minutes).Cmp(maxSeconds) > 0 {
		return fmt.Errorf("%w: %s minutes", ErrTimeTooLarge, minutes.RatString())
	}
	return nil
}

// MinutesToDuration converts exact rational minutes to whole seconds.
// Fractions of a second are dropped (truncated toward zero), never rounded.
// Values past the Duration range saturate instead of wrapping.
func MinutesToDuration(minutes *big.Rat) time.Duration {
	if minutes == nil {
		return 0
	}
	whole := wholeSeconds(minutes)
	if whole.Cmp(maxSeconds) > 0 {
		whole = maxSeconds
	} else if lim := new(big.Int).Neg(maxSeconds); whole.Cmp(lim) < 0 {
		whole = lim
	}
	return time.Duration(whole.Int64()) * time.Second
}

func wholeSeconds(minutes *big.Rat) *big.Int {
	secs := new(big.Rat).Mul(minutes, sixty)
	return new(big.Int).Quo(secs.Num(), secs.Denom())
}

// ParseRat parses an exact rational such as "3", "5/2" or "2.5".
func ParseRat(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRat, s)
	}
	return r, nil
}

func cloneRat(r *big.Rat) *big.Rat {
	if r == nil {
		return nil
	}
	return new(big.Rat).Set(r)
}

func ratOrZero(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(r)
}
