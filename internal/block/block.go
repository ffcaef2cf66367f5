/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package block models the blocks of a day's timeline and the algorithm that
// prepends a food to a block.
package block

import (
	"errors"
	"fmt"
	"time"

	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

// ErrInvertedBlock is returned by Validate when start is after end.
var ErrInvertedBlock = errors.New("block start is after its end")

// Block is the half-open interval [start, end) of a day, optionally holding
// one food. The zero value is an empty, free block at midnight.
type Block struct {
	start    timeofday.Time
	end      timeofday.Time
	occupant food.Food
}

// New constructs a block from its raw parts. A nil occupant means the block
// is free. No validation is performed; see Validate.
func New(start, end timeofday.Time, occupant food.Food) Block {
	b := Block{start: start, end: end}
	if occupant != nil {
		b.occupant = occupant.Clone()
	}
	return b
}

// Start returns the beginning of the block.
func (b Block) Start() timeofday.Time {
	return b.start
}

// End returns the exclusive end of the block.
func (b Block) End() timeofday.Time {
	return b.end
}

// Len returns the span of the block.
func (b Block) Len() time.Duration {
	return b.end.Sub(b.start)
}

// IsEmpty reports whether the block spans no time. Callers should treat an
// empty block as no block at all.
func (b Block) IsEmpty() bool {
	return b.start.Equal(b.end)
}

// HasOccupant reports whether a food is attached to the block.
func (b Block) HasOccupant() bool {
	return b.occupant != nil
}

// Occupant returns a copy of the attached food.
func (b Block) Occupant() (food.Food, bool) {
	if b.occupant == nil {
		return nil, false
	}
	return b.occupant.Clone(), true
}

// SetOccupant attaches a food, overwriting any existing one. No fit check is
// made; use AttemptPrepend to insert a food into occupied time.
func (b *Block) SetOccupant(f food.Food) {
	if f == nil {
		b.occupant = nil
		return
	}
	b.occupant = f.Clone()
}

// Validate checks the start <= end precondition. Call it where raw input is
// accepted; AttemptPrepend does not.
func (b Block) Validate() error {
	if b.start.After(b.end) {
		return fmt.Errorf("%w: [%s, %s)", ErrInvertedBlock, b.start, b.end)
	}
	return nil
}

func (b Block) String() string {
	if b.occupant == nil {
		return fmt.Sprintf("[%s, %s) free", b.start, b.end)
	}
	return fmt.Sprintf("[%s, %s) %s", b.start, b.end, b.occupant.Name())
}
