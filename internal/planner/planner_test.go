/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/friendsincode/mealclock/internal/block"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/telemetry"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

type mapResolver map[string]food.Food

func (m mapResolver) Resolve(_ context.Context, ref string) (food.Food, error) {
	f, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, ref)
	}
	return f, nil
}

func recipe(t *testing.T, code string, minutes int64) food.Food {
	t.Helper()
	r, err := food.NewRecipeBuilder(code).
		SetServingSize("g", big.NewRat(100, 1)).
		SetServings(big.NewRat(1, 1)).
		SetTime(big.NewRat(minutes, 1)).
		SetNutrition(food.Nutrition{}).
		Build()
	if err != nil {
		t.Fatalf("build %s: %v", code, err)
	}
	return r
}

func newService(t *testing.T) *Service {
	return NewService(mapResolver{
		"oats":     recipe(t, "oats", 20),
		"pancakes": recipe(t, "pancakes", 40),
		"hour":     recipe(t, "hour", 60),
		"apple":    food.NewRawFood(food.NewIString("apple"), food.NewAmount("g", big.NewRat(150, 1)), food.Nutrition{}),
	}, zerolog.Nop())
}

func at(s string) timeofday.Time { return timeofday.MustParse(s) }

func TestPrependOutcomes(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name     string
		req      Request
		want     block.Kind
		wantEnd  string
		firstEnd string
	}{
		{
			name:     "split free block",
			req:      Request{Start: at("09:00"), End: at("10:00"), FoodRef: "oats"},
			want:     block.KindSplit,
			firstEnd: "09:20",
		},
		{
			name:     "split occupied block",
			req:      Request{Start: at("09:00"), End: at("10:00"), OccupantRef: "oats", FoodRef: "pancakes"},
			want:     block.KindSplit,
			firstEnd: "09:40",
		},
		{
			name:    "does not fit",
			req:     Request{Start: at("09:00"), End: at("10:00"), OccupantRef: "pancakes", FoodRef: "oats"},
			want:    block.KindFailure,
			wantEnd: "10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := telemetry.PrependOutcomesTotal.WithLabelValues(string(tt.want))
			before := testutil.ToFloat64(counter)

			outcome, err := svc.Prepend(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Prepend: %v", err)
			}
			if outcome.Kind() != tt.want {
				t.Fatalf("outcome = %s, want %s", outcome.Kind(), tt.want)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Fatalf("outcome counter moved by %v, want 1", got)
			}

			switch o := outcome.(type) {
			case block.Split:
				if o.First.End().String() != tt.firstEnd {
					t.Fatalf("first block ends %s, want %s", o.First.End(), tt.firstEnd)
				}
			case block.Failure:
				if o.End.String() != tt.wantEnd {
					t.Fatalf("failure end = %s, want %s", o.End, tt.wantEnd)
				}
			}
		})
	}
}

func TestPrependFailureReportsRequiredEnd(t *testing.T) {
	svc := newService(t)

	outcome, err := svc.Prepend(context.Background(), Request{
		Start: at("09:00"), End: at("10:00"), OccupantRef: "hour", FoodRef: "oats",
	})
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	failure, ok := outcome.(block.Failure)
	if !ok {
		t.Fatalf("outcome = %T, want block.Failure", outcome)
	}
	if failure.RequiredEnd.String() != "10:20" {
		t.Fatalf("RequiredEnd = %s, want 10:20", failure.RequiredEnd)
	}
	if !errors.Is(failure.Err(), block.ErrNoFit) {
		t.Fatal("Failure.Err() should match ErrNoFit")
	}
}

func TestPrependExactFill(t *testing.T) {
	svc := newService(t)

	// A raw food takes no time, so the hour fills the block exactly.
	outcome, err := svc.Prepend(context.Background(), Request{
		Start: at("09:00"), End: at("10:00"), OccupantRef: "apple", FoodRef: "hour",
	})
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	replace, ok := outcome.(block.Replace)
	if !ok {
		t.Fatalf("outcome = %T, want block.Replace", outcome)
	}
	if !replace.Block.Start().Equal(at("09:00")) || !replace.Block.End().Equal(at("10:00")) {
		t.Fatalf("replace block = %s", replace.Block)
	}

	outcome, err = svc.Prepend(context.Background(), Request{
		Start: at("09:00"), End: at("10:00"), FoodRef: "hour",
	})
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	split, ok := outcome.(block.Split)
	if !ok {
		t.Fatalf("outcome = %T, want block.Split for a free block", outcome)
	}
	if !split.Second.IsEmpty() {
		t.Fatalf("second block = %s, want empty", split.Second)
	}
}

func TestPrependRejectsBadRequests(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name   string
		req    Request
		reason string
		want   error
	}{
		{
			name:   "inverted block",
			req:    Request{Start: at("11:00"), End: at("10:00"), FoodRef: "oats"},
			reason: "invalid",
			want:   block.ErrInvertedBlock,
		},
		{
			name:   "missing food",
			req:    Request{Start: at("09:00"), End: at("10:00")},
			reason: "invalid",
			want:   ErrMissingFood,
		},
		{
			name:   "unknown food",
			req:    Request{Start: at("09:00"), End: at("10:00"), FoodRef: "soup"},
			reason: "not_found",
			want:   catalog.ErrNotFound,
		},
		{
			name:   "unknown occupant",
			req:    Request{Start: at("09:00"), End: at("10:00"), OccupantRef: "soup", FoodRef: "oats"},
			reason: "not_found",
			want:   catalog.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := telemetry.PrependErrorsTotal.WithLabelValues(tt.reason)
			before := testutil.ToFloat64(counter)

			outcome, err := svc.Prepend(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Prepend() error = %v, want %v", err, tt.want)
			}
			if outcome != nil {
				t.Fatalf("outcome = %v, want nil on error", outcome)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Fatalf("error counter moved by %v, want 1", got)
			}
		})
	}
}

func TestReasonFor(t *testing.T) {
	if got := reasonFor(fmt.Errorf("x: %w", catalog.ErrCycle)); got != "cycle" {
		t.Fatalf("reasonFor(cycle) = %q", got)
	}
	if got := reasonFor(errors.New("db down")); got != "internal" {
		t.Fatalf("reasonFor(other) = %q", got)
	}
}
