/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import "math/big"

// RecipeBuilder assembles a Recipe field by field.
type RecipeBuilder struct {
	name        IString
	servingSize *Amount
	servings    *big.Rat
	ingredients []Ingredient
	steps       []Step
	time        *big.Rat
	nutrition   *Nutrition
}

// NewRecipeBuilder starts a recipe with the given short code.
func NewRecipeBuilder(shortCode string) *RecipeBuilder {
	return &RecipeBuilder{name: NewIString(shortCode)}
}

// AddName sets the recipe name for a language, overwriting any previous value.
func (b *RecipeBuilder) AddName(lang, name string) *RecipeBuilder {
	b.name.SetValue(lang, name)
	return b
}

// SetDefaultLang sets the default language of the name.
func (b *RecipeBuilder) SetDefaultLang(lang string) *RecipeBuilder {
	b.name.SetDefault(lang)
	return b
}

// SetServingSize sets the serving size from a unit and an amount.
func (b *RecipeBuilder) SetServingSize(unit Unit, amount *big.Rat) *RecipeBuilder {
	a := NewAmount(unit, amount)
	b.servingSize = &a
	return b
}

// SetServings sets the number of servings the recipe makes.
func (b *RecipeBuilder) SetServings(servings *big.Rat) *RecipeBuilder {
	b.servings = cloneRat(servings)
	return b
}

// AddFood appends an ingredient.
func (b *RecipeBuilder) AddFood(f Food, unit Unit, amount *big.Rat) *RecipeBuilder {
	b.ingredients = append(b.ingredients, Ingredient{Food: f.Clone(), Amount: NewAmount(unit, amount)})
	return b
}

// AddStep appends a step.
func (b *RecipeBuilder) AddStep(step Step) *RecipeBuilder {
	b.steps = append(b.steps, step.Clone())
	return b
}

// SetTime sets how long the recipe takes, in minutes.
func (b *RecipeBuilder) SetTime(minutes *big.Rat) *RecipeBuilder {
	b.time = cloneRat(minutes)
	return b
}

// SetNutrition attaches nutritional data.
func (b *RecipeBuilder) SetNutrition(n Nutrition) *RecipeBuilder {
	b.nutrition = &n
	return b
}

// Build creates the Recipe. It fails if any required field is unset or the
// time is negative or too large. The builder can be reused afterwards.
func (b *RecipeBuilder) Build() (*Recipe, error) {
	if b.servingSize == nil {
		return nil, ErrServingSizeNotSet
	}
	if b.servings == nil {
		return nil, ErrServingsNotSet
	}
	if b.time == nil {
		return nil, ErrTimeNotSet
	}
	if err := CheckPrepTime(b.time); err != nil {
		return nil, err
	}
	if b.nutrition == nil {
		return nil, ErrNutritionNotSet
	}

	return NewRecipe(b.name, *b.servingSize, b.servings, b.ingredients, b.steps, b.time, *b.nutrition), nil
}
