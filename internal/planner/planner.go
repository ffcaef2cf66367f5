/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package planner resolves catalog foods and places them at the front of a
// time block.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/friendsincode/mealclock/internal/block"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/telemetry"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

const tracerName = "mealclock/planner"

// ErrMissingFood is returned when the request names no food to prepend.
var ErrMissingFood = errors.New("food reference is required")

// Resolver looks up catalog foods by ID or short code.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (food.Food, error)
}

// CatalogResolver adapts a catalog service to Resolver.
type CatalogResolver struct {
	Catalog *catalog.Service
}

// Resolve implements Resolver.
func (c CatalogResolver) Resolve(ctx context.Context, ref string) (food.Food, error) {
	f, _, err := c.Catalog.Resolve(ctx, ref)
	return f, err
}

// Request describes one prepend attempt. OccupantRef may be empty for a free
// block.
type Request struct {
	Start       timeofday.Time
	End         timeofday.Time
	OccupantRef string
	FoodRef     string
}

// Service runs prepend attempts against catalog foods.
type Service struct {
	resolver Resolver
	logger   zerolog.Logger
}

// NewService creates a planner service.
func NewService(resolver Resolver, logger zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		logger:   logger.With().Str("component", "planner").Logger(),
	}
}

// Prepend builds the block described by req and attempts to put the food at
// its start. A no-fit is reported as a block.Failure outcome, not an error;
// errors mean the request itself could not be evaluated.
func (s *Service) Prepend(ctx context.Context, req Request) (block.Outcome, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "planner.Prepend")
	defer span.End()

	telemetry.AddSpanAttributes(span, map[string]any{
		"block.start":  req.Start.String(),
		"block.end":    req.End.String(),
		"food.ref":     req.FoodRef,
		"occupant.ref": req.OccupantRef,
	})

	if req.FoodRef == "" {
		return nil, s.reject(span, "invalid", ErrMissingFood)
	}

	b := block.New(req.Start, req.End, nil)
	if err := b.Validate(); err != nil {
		return nil, s.reject(span, "invalid", err)
	}

	if req.OccupantRef != "" {
		occupant, err := s.resolver.Resolve(ctx, req.OccupantRef)
		if err != nil {
			return nil, s.reject(span, reasonFor(err), fmt.Errorf("resolve occupant: %w", err))
		}
		b.SetOccupant(occupant)
	}

	f, err := s.resolver.Resolve(ctx, req.FoodRef)
	if err != nil {
		return nil, s.reject(span, reasonFor(err), fmt.Errorf("resolve food: %w", err))
	}

	outcome := b.AttemptPrepend(f)

	telemetry.PrependOutcomesTotal.WithLabelValues(string(outcome.Kind())).Inc()
	telemetry.AddSpanAttributes(span, map[string]any{"prepend.outcome": string(outcome.Kind())})

	event := s.logger.Debug().
		Str("block", b.String()).
		Str("food", req.FoodRef).
		Int64("food_seconds", int64(f.Duration().Seconds())).
		Str("outcome", string(outcome.Kind()))
	if failure, ok := outcome.(block.Failure); ok {
		event = event.Str("required_end", failure.RequiredEnd.String())
	}
	event.Msg("prepend evaluated")

	return outcome, nil
}

func (s *Service) reject(span trace.Span, reason string, err error) error {
	telemetry.PrependErrorsTotal.WithLabelValues(reason).Inc()
	telemetry.RecordError(span, err)
	s.logger.Debug().Err(err).Str("reason", reason).Msg("prepend rejected")
	return err
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	case errors.Is(err, catalog.ErrCycle):
		return "cycle"
	default:
		return "internal"
	}
}
