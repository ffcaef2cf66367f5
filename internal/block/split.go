/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package block

import (
	"errors"
	"fmt"

	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

// ErrNoFit matches the error form of a Failure outcome.
var ErrNoFit = errors.New("food does not fit in block")

// Kind names an outcome variant.
type Kind string

const (
	KindReplace Kind = "replace"
	KindSplit   Kind = "split"
	KindFailure Kind = "failure"
)

// Outcome is the result of AttemptPrepend. It is exactly one of Replace,
// Split or Failure; callers must handle all three.
type Outcome interface {
	Kind() Kind
	outcome()
}

// Replace is a single block covering the original span and holding only the
// new food. The previous occupant is not part of the result.
type Replace struct {
	Block Block
}

// Split is the original span cut at the split point: the new food first, the
// previous occupant (or nothing) second. Second may be empty.
type Split struct {
	First  Block
	Second Block
}

// Failure means the food, plus any occupant it would push back, needs the
// block to end at RequiredEnd.
type Failure struct {
	RequiredEnd timeofday.Time
	End         timeofday.Time
}

func (Replace) Kind() Kind { return KindReplace }
func (Split) Kind() Kind   { return KindSplit }
func (Failure) Kind() Kind { return KindFailure }

func (Replace) outcome() {}
func (Split) outcome()   {}
func (Failure) outcome() {}

// NoFitError is the error form of a Failure.
type NoFitError struct {
	RequiredEnd timeofday.Time
	End         timeofday.Time
}

func (e *NoFitError) Error() string {
	return fmt.Sprintf("food needs the block to end at %s, block ends at %s", e.RequiredEnd, e.End)
}

func (e *NoFitError) Is(target error) bool {
	return target == ErrNoFit
}

// Err converts the failure into an error for boundary layers.
func (f Failure) Err() error {
	return &NoFitError{RequiredEnd: f.RequiredEnd, End: f.End}
}

// Blocks returns the blocks that replace the original one, in order. It is
// nil for a Failure.
func Blocks(o Outcome) []Block {
	switch v := o.(type) {
	case Replace:
		return []Block{v.Block}
	case Split:
		return []Block{v.First, v.Second}
	default:
		return nil
	}
}

// AttemptPrepend places f at the start of the block, pushing any existing
// occupant back to begin where f ends.
//
// Neither b nor f is modified; the returned blocks hold their own copies.
func (b Block) AttemptPrepend(f food.Food) Outcome {
	requiredEnd := b.start
	if b.occupant != nil {
		requiredEnd = requiredEnd.Add(b.occupant.Duration())
	}
	requiredEnd = requiredEnd.Add(f.Duration())

	if requiredEnd.After(b.end) {
		return Failure{RequiredEnd: requiredEnd, End: b.end}
	}

	// Differs from requiredEnd whenever there is an occupant: this is where
	// f ends and the occupant begins.
	splitPoint := b.start.Add(f.Duration())

	if splitPoint.Equal(b.end) && b.occupant != nil {
		// f alone fills the span. Only possible when the occupant takes no
		// time, and it is dropped rather than kept as a zero-length block.
		return Replace{Block: New(b.start, b.end, f)}
	}

	return Split{
		First:  New(b.start, splitPoint, f),
		Second: New(splitPoint, b.end, b.occupant),
	}
}
