/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import (
	"math/big"
	"time"
)

// RawFood is a single-ingredient food that needs no preparation. It is the
// atomic building block of recipes.
type RawFood struct {
	name        IString
	servingSize Amount
	nutrition   Nutrition
}

// NewRawFood constructs a RawFood.
func NewRawFood(name IString, servingSize Amount, nutrition Nutrition) *RawFood {
	return &RawFood{
		name:        name.Clone(),
		servingSize: servingSize.Clone(),
		nutrition:   nutrition,
	}
}

func (f *RawFood) Kind() Kind              { return KindRaw }
func (f *RawFood) Name() IString           { return f.name.Clone() }
func (f *RawFood) ServingSize() Amount     { return f.servingSize.Clone() }
func (f *RawFood) Nutrition() Nutrition    { return f.nutrition }
func (f *RawFood) PrepTime() *big.Rat      { return new(big.Rat) }
func (f *RawFood) Duration() time.Duration { return 0 }

// SetName replaces the food's name.
func (f *RawFood) SetName(name IString) {
	f.name = name.Clone()
}

// Clone returns an independent copy.
func (f *RawFood) Clone() Food {
	return NewRawFood(f.name, f.servingSize, f.nutrition)
}

// Step is one instruction in a recipe with the minutes it takes.
type Step struct {
	text IString
	time *big.Rat
}

// NewStep creates a step from a short code and its time in minutes.
func NewStep(shortCode string, minutes *big.Rat) Step {
	return Step{text: NewIString(shortCode), time: ratOrZero(minutes)}
}

// Text returns the step text.
func (s Step) Text() IString { return s.text.Clone() }

// SetText replaces the step text, e.g. to add translations.
func (s *Step) SetText(text IString) { s.text = text.Clone() }

// Time returns the step time in minutes.
func (s Step) Time() *big.Rat { return ratOrZero(s.time) }

// SetTime replaces the step time in minutes.
func (s *Step) SetTime(minutes *big.Rat) { s.time = ratOrZero(minutes) }

// Clone returns an independent copy.
func (s Step) Clone() Step {
	return Step{text: s.text.Clone(), time: cloneRat(s.time)}
}

// Ingredient is a component food and the amount of it a recipe uses.
type Ingredient struct {
	Food   Food
	Amount Amount
}

// Clone returns an independent copy.
func (i Ingredient) Clone() Ingredient {
	out := Ingredient{Amount: i.Amount.Clone()}
	if i.Food != nil {
		out.Food = i.Food.Clone()
	}
	return out
}

// Recipe is a composite food made of other foods plus directions.
//
// Servings is rational because some recipes, as written, make a fractional
// number of servings.
type Recipe struct {
	name        IString
	servingSize Amount
	servings    *big.Rat
	ingredients []Ingredient
	steps       []Step
	time        *big.Rat
	nutrition   Nutrition
}

// NewRecipe constructs a Recipe from all of its parts. Prefer RecipeBuilder.
func NewRecipe(
	name IString,
	servingSize Amount,
	servings *big.Rat,
	ingredients []Ingredient,
	steps []Step,
	minutes *big.Rat,
	nutrition Nutrition,
) *Recipe {
	r := &Recipe{
		name:        name.Clone(),
		servingSize: servingSize.Clone(),
		servings:    ratOrZero(servings),
		time:        ratOrZero(minutes),
		nutrition:   nutrition,
	}
	r.ingredients = make([]Ingredient, len(ingredients))
	for i, ing := range ingredients {
		r.ingredients[i] = ing.Clone()
	}
	r.steps = make([]Step, len(steps))
	for i, st := range steps {
		r.steps[i] = st.Clone()
	}
	return r
}

func (r *Recipe) Kind() Kind           { return KindRecipe }
func (r *Recipe) Name() IString        { return r.name.Clone() }
func (r *Recipe) ServingSize() Amount  { return r.servingSize.Clone() }
func (r *Recipe) Servings() *big.Rat   { return ratOrZero(r.servings) }
func (r *Recipe) Nutrition() Nutrition { return r.nutrition }

// PrepTime returns how long the recipe takes, in minutes.
func (r *Recipe) PrepTime() *big.Rat { return ratOrZero(r.time) }

// Duration returns the preparation time in whole seconds.
func (r *Recipe) Duration() time.Duration {
	return MinutesToDuration(r.time)
}

// Ingredients returns copies of the component foods.
func (r *Recipe) Ingredients() []Ingredient {
	out := make([]Ingredient, len(r.ingredients))
	for i, ing := range r.ingredients {
		out[i] = ing.Clone()
	}
	return out
}

// Steps returns copies of the steps, in order.
func (r *Recipe) Steps() []Step {
	out := make([]Step, len(r.steps))
	for i, st := range r.steps {
		out[i] = st.Clone()
	}
	return out
}

// Decompose lists the component foods. Nested recipes are not expanded.
func (r *Recipe) Decompose() []Food {
	out := make([]Food, 0, len(r.ingredients))
	for _, ing := range r.ingredients {
		if ing.Food != nil {
			out = append(out, ing.Food.Clone())
		}
	}
	return out
}

// Clone returns an independent deep copy.
func (r *Recipe) Clone() Food {
	return NewRecipe(r.name, r.servingSize, r.servings, r.ingredients, r.steps, r.time, r.nutrition)
}
