/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import "math/big"

// Unit labels a quantity, e.g. "g" or "cup".
type Unit string

// Nutrition is a placeholder for nutritional data. Nothing is computed from it.
type Nutrition struct{}

// Amount is an exact quantity in a unit.
type Amount struct {
	Unit  Unit
	value *big.Rat
}

// NewAmount builds an Amount. A nil value is treated as zero.
func NewAmount(unit Unit, value *big.Rat) Amount {
	return Amount{Unit: unit, value: ratOrZero(value)}
}

// Value returns a copy of the quantity.
func (a Amount) Value() *big.Rat {
	return ratOrZero(a.value)
}

// SetValue replaces the quantity.
func (a *Amount) SetValue(v *big.Rat) {
	a.value = ratOrZero(v)
}

// Clone returns an independent copy.
func (a Amount) Clone() Amount {
	return Amount{Unit: a.Unit, value: cloneRat(a.value)}
}

// Equal compares unit and value.
func (a Amount) Equal(o Amount) bool {
	return a.Unit == o.Unit && ratOrZero(a.value).Cmp(ratOrZero(o.value)) == 0
}
