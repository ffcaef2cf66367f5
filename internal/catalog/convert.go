/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/models"
)

// Lookup resolves an ingredient short code to a food.
type Lookup func(shortCode string) (food.Food, error)

// Validate checks a record's shape without resolving its ingredients.
func Validate(rec *models.FoodRecord) error {
	if strings.TrimSpace(rec.ShortCode) == "" {
		return fmt.Errorf("%w: short code is required", ErrInvalid)
	}
	if _, err := parseRequired("serving amount", rec.ServingAmount); err != nil {
		return err
	}

	switch rec.Kind {
	case models.FoodKindRaw:
		if len(rec.Ingredients) > 0 || len(rec.Steps) > 0 {
			return fmt.Errorf("%w: raw food %q cannot have ingredients or steps", ErrInvalid, rec.ShortCode)
		}
		if rec.PrepMinutes != "" {
			return fmt.Errorf("%w: raw food %q cannot have a preparation time", ErrInvalid, rec.ShortCode)
		}
	case models.FoodKindRecipe:
		if _, err := parseRequired("servings", rec.Servings); err != nil {
			return err
		}
		minutes, err := parseRequired("time", rec.PrepMinutes)
		if err != nil {
			return err
		}
		if err := food.CheckPrepTime(minutes); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, rec.ShortCode, err)
		}
		for _, ing := range rec.Ingredients {
			if ing.ShortCode == "" {
				return fmt.Errorf("%w: ingredient without short code in %q", ErrInvalid, rec.ShortCode)
			}
			if ing.ShortCode == rec.ShortCode {
				return fmt.Errorf("%w: %q lists itself as an ingredient", ErrCycle, rec.ShortCode)
			}
			if _, err := parseRequired("ingredient amount", ing.Amount); err != nil {
				return err
			}
		}
		for _, st := range rec.Steps {
			if _, err := parseOptional(st.Minutes); err != nil {
				return fmt.Errorf("%w: step %q: %w", ErrInvalid, st.ShortCode, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, rec.Kind)
	}
	return nil
}

// Decode turns a record into a food. Recipe ingredients are resolved through
// lookup; it is not called for raw foods.
func Decode(rec *models.FoodRecord, lookup Lookup) (food.Food, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}

	servingAmount, _ := food.ParseRat(rec.ServingAmount)

	if rec.Kind == models.FoodKindRaw {
		return food.NewRawFood(nameOf(rec), food.NewAmount(food.Unit(rec.ServingUnit), servingAmount), food.Nutrition{}), nil
	}

	servings, _ := food.ParseRat(rec.Servings)
	minutes, _ := food.ParseRat(rec.PrepMinutes)

	b := food.NewRecipeBuilder(rec.ShortCode).
		SetDefaultLang(rec.DefaultLang).
		SetServingSize(food.Unit(rec.ServingUnit), servingAmount).
		SetServings(servings).
		SetTime(minutes).
		SetNutrition(food.Nutrition{})
	for lang, name := range rec.Names {
		b.AddName(lang, name)
	}

	for _, ing := range rec.Ingredients {
		f, err := lookup(ing.ShortCode)
		if err != nil {
			return nil, fmt.Errorf("resolve ingredient %q of %q: %w", ing.ShortCode, rec.ShortCode, err)
		}
		amount, _ := food.ParseRat(ing.Amount)
		b.AddFood(f, food.Unit(ing.Unit), amount)
	}

	for _, st := range rec.Steps {
		minutes, _ := parseOptional(st.Minutes)
		step := food.NewStep(st.ShortCode, minutes)
		if len(st.Names) > 0 {
			text := food.NewIString(st.ShortCode)
			text.SetDefault(rec.DefaultLang)
			for lang, v := range st.Names {
				text.SetValue(lang, v)
			}
			step.SetText(text)
		}
		b.AddStep(step)
	}

	return b.Build()
}

// DurationOf returns the preparation duration a record decodes to, without
// resolving ingredients.
func DurationOf(rec *models.FoodRecord) (int64, error) {
	if rec.Kind != models.FoodKindRecipe {
		return 0, nil
	}
	minutes, err := parseRequired("time", rec.PrepMinutes)
	if err != nil {
		return 0, err
	}
	return int64(food.MinutesToDuration(minutes).Seconds()), nil
}

func nameOf(rec *models.FoodRecord) food.IString {
	name := food.NewIString(rec.ShortCode)
	name.SetDefault(rec.DefaultLang)
	for lang, v := range rec.Names {
		name.SetValue(lang, v)
	}
	return name
}

func parseRequired(field, s string) (*big.Rat, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	r, err := food.ParseRat(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, field, err)
	}
	return r, nil
}

func parseOptional(s string) (*big.Rat, error) {
	if strings.TrimSpace(s) == "" {
		return new(big.Rat), nil
	}
	return food.ParseRat(strings.TrimSpace(s))
}
