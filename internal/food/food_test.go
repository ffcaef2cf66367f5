/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestMinutesToDurationTruncates(t *testing.T) {
	tests := []struct {
		name    string
		minutes string
		want    time.Duration
	}{
		{name: "whole minutes", minutes: "30", want: 30 * time.Minute},
		{name: "half minute", minutes: "45/2", want: 22*time.Minute + 30*time.Second},
		{name: "one seventh truncates down", minutes: "1/7", want: 8 * time.Second},
		{name: "just under a second", minutes: "1/61", want: 0},
		{name: "decimal input", minutes: "2.5", want: 150 * time.Second},
		{name: "zero", minutes: "0", want: 0},
		{name: "never rounds up", minutes: "119/120", want: 59 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRat(tt.minutes)
			if err != nil {
				t.Fatalf("ParseRat(%q): %v", tt.minutes, err)
			}
			if got := MinutesToDuration(r); got != tt.want {
				t.Fatalf("MinutesToDuration(%s) = %v, want %v", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestMinutesToDurationNil(t *testing.T) {
	if got := MinutesToDuration(nil); got != 0 {
		t.Fatalf("MinutesToDuration(nil) = %v, want 0", got)
	}
}

func TestMinutesToDurationSaturates(t *testing.T) {
	limit := time.Duration(maxSeconds.Int64()) * time.Second
	tests := []struct {
		name    string
		minutes *big.Rat
		want    time.Duration
	}{
		{name: "two hundred million minutes", minutes: big.NewRat(200_000_000, 1), want: limit},
		{name: "far past int64", minutes: new(big.Rat).SetFrac(new(big.Int).Lsh(big.NewInt(1), 80), big.NewInt(1)), want: limit},
		{name: "far below int64", minutes: new(big.Rat).SetFrac(new(big.Int).Lsh(big.NewInt(-1), 80), big.NewInt(1)), want: -limit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesToDuration(tt.minutes); got != tt.want {
				t.Fatalf("MinutesToDuration(%s) = %v, want %v", tt.minutes.RatString(), got, tt.want)
			}
		})
	}
}

func TestCheckPrepTime(t *testing.T) {
	atLimit := new(big.Rat).SetFrac(maxSeconds, big.NewInt(60))
	tests := []struct {
		name    string
		minutes *big.Rat
		wantErr error
	}{
		{name: "nil", minutes: nil},
		{name: "zero", minutes: new(big.Rat)},
		{name: "at limit", minutes: atLimit},
		{name: "one minute past limit", minutes: new(big.Rat).Add(atLimit, big.NewRat(1, 1)), wantErr: ErrTimeTooLarge},
		{name: "two hundred million minutes", minutes: big.NewRat(200_000_000, 1), wantErr: ErrTimeTooLarge},
		{name: "negative", minutes: big.NewRat(-1, 2), wantErr: ErrNegativeTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPrepTime(tt.minutes)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckPrepTime() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckPrepTime() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRatRejectsGarbage(t *testing.T) {
	if _, err := ParseRat("ten"); !errors.Is(err, ErrInvalidRat) {
		t.Fatalf("ParseRat error = %v, want ErrInvalidRat", err)
	}
}

func TestRawFoodHasZeroDuration(t *testing.T) {
	rice := NewRawFood(NewIString("rice"), NewAmount("g", big.NewRat(100, 1)), Nutrition{})

	if rice.Duration() != 0 {
		t.Fatalf("Duration() = %v, want 0", rice.Duration())
	}
	if rice.PrepTime().Sign() != 0 {
		t.Fatalf("PrepTime() = %v, want 0", rice.PrepTime())
	}
	if rice.Kind() != KindRaw {
		t.Fatalf("Kind() = %q, want raw", rice.Kind())
	}
}

func TestIString(t *testing.T) {
	is := NewIString("hello-world")
	is.SetDefault("en_US")
	is.SetValue("en_US", "Hello World!")
	is.SetValue("fr_FR", "Bonjour monde!")

	if is.ShortCode() != "hello-world" {
		t.Fatalf("ShortCode() = %q", is.ShortCode())
	}
	if is.Default() != "en_US" {
		t.Fatalf("Default() = %q", is.Default())
	}
	if v, ok := is.Value("fr_FR"); !ok || v != "Bonjour monde!" {
		t.Fatalf("Value(fr_FR) = %q, %v", v, ok)
	}
	if _, ok := is.Value("en_UK"); ok {
		t.Fatal("expected no value for en_UK")
	}
	if is.String() != "Hello World!" {
		t.Fatalf("String() = %q", is.String())
	}

	bare := NewIString("bare")
	if bare.String() != "bare" {
		t.Fatalf("String() without values = %q, want short code", bare.String())
	}
}

func TestIStringCloneIsIndependent(t *testing.T) {
	is := NewIString("soup")
	is.SetValue("en", "Soup")

	cp := is.Clone()
	cp.SetValue("en", "Stew")

	if v, _ := is.Value("en"); v != "Soup" {
		t.Fatalf("original changed to %q after mutating clone", v)
	}
}

func validBuilder() *RecipeBuilder {
	rice := NewRawFood(NewIString("rice"), NewAmount("g", big.NewRat(100, 1)), Nutrition{})
	return NewRecipeBuilder("fried-rice").
		AddName("en", "Fried rice").
		SetDefaultLang("en").
		SetServingSize("g", big.NewRat(250, 1)).
		SetServings(big.NewRat(2, 1)).
		AddFood(rice, "g", big.NewRat(200, 1)).
		AddStep(NewStep("fry", big.NewRat(10, 1))).
		SetTime(big.NewRat(45, 2)).
		SetNutrition(Nutrition{})
}

func TestRecipeBuilderBuild(t *testing.T) {
	r, err := validBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if r.Duration() != 1350*time.Second {
		t.Fatalf("Duration() = %v, want 22m30s", r.Duration())
	}
	if r.Name().String() != "Fried rice" {
		t.Fatalf("Name() = %q", r.Name().String())
	}
	if len(r.Ingredients()) != 1 || len(r.Steps()) != 1 {
		t.Fatalf("got %d ingredients and %d steps, want 1 and 1", len(r.Ingredients()), len(r.Steps()))
	}
	if len(r.Decompose()) != 1 {
		t.Fatalf("Decompose() len = %d, want 1", len(r.Decompose()))
	}
}

func TestRecipeBuilderMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		builder *RecipeBuilder
		wantErr error
	}{
		{
			name:    "nothing set reports serving size first",
			builder: NewRecipeBuilder("x"),
			wantErr: ErrServingSizeNotSet,
		},
		{
			name:    "servings missing",
			builder: NewRecipeBuilder("x").SetServingSize("g", big.NewRat(1, 1)),
			wantErr: ErrServingsNotSet,
		},
		{
			name: "time missing",
			builder: NewRecipeBuilder("x").
				SetServingSize("g", big.NewRat(1, 1)).
				SetServings(big.NewRat(1, 1)),
			wantErr: ErrTimeNotSet,
		},
		{
			name: "nutrition missing",
			builder: NewRecipeBuilder("x").
				SetServingSize("g", big.NewRat(1, 1)).
				SetServings(big.NewRat(1, 1)).
				SetTime(big.NewRat(5, 1)),
			wantErr: ErrNutritionNotSet,
		},
		{
			name:    "negative time",
			builder: validBuilder().SetTime(big.NewRat(-1, 1)),
			wantErr: ErrNegativeTime,
		},
		{
			name:    "time too large",
			builder: validBuilder().SetTime(big.NewRat(200_000_000, 1)),
			wantErr: ErrTimeTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecipeCloneIsIndependent(t *testing.T) {
	r, err := validBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cp := r.Clone().(*Recipe)

	// Mutating values handed out by the copy must not reach the original.
	cp.PrepTime().SetInt64(999)
	cp.servings.SetInt64(7)
	cp.name.SetValue("en", "Changed")
	cp.steps[0].SetTime(big.NewRat(1, 1))

	if r.PrepTime().Cmp(big.NewRat(45, 2)) != 0 {
		t.Fatalf("original prep time changed to %v", r.PrepTime())
	}
	if r.Servings().Cmp(big.NewRat(2, 1)) != 0 {
		t.Fatalf("original servings changed to %v", r.Servings())
	}
	if r.Name().String() != "Fried rice" {
		t.Fatalf("original name changed to %q", r.Name().String())
	}
	if r.Steps()[0].Time().Cmp(big.NewRat(10, 1)) != 0 {
		t.Fatalf("original step time changed to %v", r.Steps()[0].Time())
	}
}
