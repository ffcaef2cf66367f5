/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// FoodKind discriminates catalog entries.
type FoodKind string

const (
	FoodKindRaw    FoodKind = "raw"
	FoodKindRecipe FoodKind = "recipe"
)

// FoodRecord is a catalog entry: either a raw food or a recipe. Rational
// quantities are stored as strings accepted by big.Rat.SetString ("3", "5/2").
type FoodRecord struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	ShortCode     string            `gorm:"type:varchar(128);uniqueIndex;not null" json:"short_code"`
	Kind          FoodKind          `gorm:"type:varchar(16);index;not null" json:"kind"`
	Names         map[string]string `gorm:"serializer:json" json:"names"`
	DefaultLang   string            `gorm:"type:varchar(16)" json:"default_lang"`
	ServingUnit   string            `gorm:"type:varchar(32)" json:"serving_unit"`
	ServingAmount string            `gorm:"type:varchar(64)" json:"serving_amount"`
	Servings      string            `gorm:"type:varchar(64)" json:"servings,omitempty"`
	PrepMinutes   string            `gorm:"type:varchar(64)" json:"prep_minutes,omitempty"`
	Ingredients   []IngredientRef   `gorm:"serializer:json" json:"ingredients,omitempty"`
	Steps         []StepRecord      `gorm:"serializer:json" json:"steps,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IngredientRef points at another catalog entry by short code.
type IngredientRef struct {
	ShortCode string `json:"short_code"`
	Unit      string `json:"unit"`
	Amount    string `json:"amount"`
}

// StepRecord is one recipe step with its time in minutes.
type StepRecord struct {
	ShortCode string            `json:"short_code"`
	Names     map[string]string `json:"names,omitempty"`
	Minutes   string            `json:"minutes"`
}

// TableName returns the table name for GORM.
func (FoodRecord) TableName() string {
	return "foods"
}

// NewFoodRecord creates a record with a fresh ID.
func NewFoodRecord(shortCode string, kind FoodKind) *FoodRecord {
	return &FoodRecord{
		ID:        uuid.NewString(),
		ShortCode: shortCode,
		Kind:      kind,
		Names:     map[string]string{},
	}
}
