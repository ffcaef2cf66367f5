/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog stores the foods that can be placed on a timeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/cache"
	"github.com/friendsincode/mealclock/internal/events"
	"github.com/friendsincode/mealclock/internal/food"
	"github.com/friendsincode/mealclock/internal/models"
	"github.com/friendsincode/mealclock/internal/telemetry"
)

// maxDepth bounds ingredient nesting when resolving a recipe.
const maxDepth = 16

// Service is the catalog store. The cache and bus are optional.
type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a catalog service.
func NewService(db *gorm.DB, c *cache.Cache, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		cache:  c,
		bus:    bus,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Create validates and stores a new record. Every recipe ingredient must
// already exist.
func (s *Service) Create(ctx context.Context, rec *models.FoodRecord, actor string) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := Validate(rec); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.insert(tx, rec)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("food_id", rec.ID).Str("short_code", rec.ShortCode).Str("actor", actor).Msg("food created")
	_ = s.cache.InvalidateFoodList(ctx)
	s.bus.Publish(events.EventFoodCreated, events.Payload{
		"actor":         actor,
		"resource_type": "food",
		"resource_id":   rec.ID,
		"short_code":    rec.ShortCode,
		"kind":          string(rec.Kind),
	})
	return nil
}

// insert checks uniqueness and ingredient references inside tx.
func (s *Service) insert(tx *gorm.DB, rec *models.FoodRecord) error {
	var count int64
	if err := tx.Model(&models.FoodRecord{}).Where("short_code = ?", rec.ShortCode).Count(&count).Error; err != nil {
		return fmt.Errorf("check short code: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicate, rec.ShortCode)
	}

	for _, ing := range rec.Ingredients {
		if err := tx.Model(&models.FoodRecord{}).Where("short_code = ?", ing.ShortCode).Count(&count).Error; err != nil {
			return fmt.Errorf("check ingredient: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: ingredient %q of %q", ErrNotFound, ing.ShortCode, rec.ShortCode)
		}
	}

	if err := tx.Create(rec).Error; err != nil {
		return fmt.Errorf("create food: %w", err)
	}
	return nil
}

// Get returns a record by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.FoodRecord, error) {
	if rec, ok := s.cache.GetFood(ctx, id); ok {
		telemetry.CatalogCacheRequestsTotal.WithLabelValues("hit").Inc()
		return rec, nil
	}
	s.countMiss()

	var rec models.FoodRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, id)
	}
	_ = s.cache.SetFood(ctx, &rec)
	return &rec, nil
}

// GetByShortCode returns a record by short code.
func (s *Service) GetByShortCode(ctx context.Context, shortCode string) (*models.FoodRecord, error) {
	if id, ok := s.cache.GetFoodIDByShortCode(ctx, shortCode); ok {
		return s.Get(ctx, id)
	}

	var rec models.FoodRecord
	if err := s.db.WithContext(ctx).First(&rec, "short_code = ?", shortCode).Error; err != nil {
		return nil, translate(err, shortCode)
	}
	_ = s.cache.SetFood(ctx, &rec)
	return &rec, nil
}

// Find accepts either an ID or a short code.
func (s *Service) Find(ctx context.Context, ref string) (*models.FoodRecord, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return s.Get(ctx, ref)
	}
	return s.GetByShortCode(ctx, ref)
}

// List returns every record ordered by short code.
func (s *Service) List(ctx context.Context) ([]models.FoodRecord, error) {
	if recs, ok := s.cache.GetFoodList(ctx); ok {
		telemetry.CatalogCacheRequestsTotal.WithLabelValues("hit").Inc()
		return recs, nil
	}
	s.countMiss()

	var recs []models.FoodRecord
	if err := s.db.WithContext(ctx).Order("short_code").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	_ = s.cache.SetFoodList(ctx, recs)
	return recs, nil
}

// Delete removes a record. Foods used as an ingredient cannot be deleted.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	var rec models.FoodRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			return translate(err, id)
		}

		var recipes []models.FoodRecord
		if err := tx.Where("kind = ?", models.FoodKindRecipe).Find(&recipes).Error; err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}
		for _, r := range recipes {
			for _, ing := range r.Ingredients {
				if ing.ShortCode == rec.ShortCode {
					return fmt.Errorf("%w: %q is an ingredient of %q", ErrInUse, rec.ShortCode, r.ShortCode)
				}
			}
		}

		if err := tx.Delete(&models.FoodRecord{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete food: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("food_id", id).Str("short_code", rec.ShortCode).Str("actor", actor).Msg("food deleted")
	_ = s.cache.InvalidateFood(ctx, id, rec.ShortCode)
	s.bus.Publish(events.EventFoodDeleted, events.Payload{
		"actor":         actor,
		"resource_type": "food",
		"resource_id":   id,
		"short_code":    rec.ShortCode,
	})
	return nil
}

// Import loads a YAML catalog file in one transaction. Entries whose short
// code already exists are skipped; any other error rolls back the import.
func (s *Service) Import(ctx context.Context, r io.Reader, actor string) (*ImportResult, error) {
	file, err := ParseYAML(r)
	if err != nil {
		return nil, err
	}
	ordered, err := importOrder(file.Foods)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Created: []string{}, Skipped: []string{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range ordered {
			rec := entry.Record()
			if err := Validate(rec); err != nil {
				return err
			}
			if err := s.insert(tx, rec); err != nil {
				if errors.Is(err, ErrDuplicate) {
					result.Skipped = append(result.Skipped, rec.ShortCode)
					continue
				}
				return err
			}
			result.Created = append(result.Created, rec.ShortCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.CatalogImportedTotal.Add(float64(len(result.Created)))
	s.logger.Info().Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).Str("actor", actor).Msg("catalog imported")
	_ = s.cache.InvalidateFoodList(ctx)
	s.bus.Publish(events.EventCatalogImported, events.Payload{
		"actor":         actor,
		"resource_type": "catalog",
		"created":       len(result.Created),
		"skipped":       len(result.Skipped),
	})
	return result, nil
}

// Export writes the whole catalog as YAML, ingredients before recipes.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	recs, err := s.List(ctx)
	if err != nil {
		return err
	}
	entries := make([]Entry, 0, len(recs))
	for i := range recs {
		entries = append(entries, EntryFromRecord(&recs[i]))
	}
	ordered, err := importOrder(entries)
	if err != nil {
		return err
	}
	return WriteYAML(w, &File{Foods: ordered})
}

// Resolve loads a record by ID or short code and decodes it into a food,
// resolving nested ingredients.
func (s *Service) Resolve(ctx context.Context, ref string) (food.Food, *models.FoodRecord, error) {
	rec, err := s.Find(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.decode(ctx, rec, map[string]bool{}, 0)
	if err != nil {
		return nil, nil, err
	}
	return f, rec, nil
}

func (s *Service) decode(ctx context.Context, rec *models.FoodRecord, visiting map[string]bool, depth int) (food.Food, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d at %q", ErrCycle, maxDepth, rec.ShortCode)
	}
	if visiting[rec.ShortCode] {
		return nil, fmt.Errorf("%w: through %q", ErrCycle, rec.ShortCode)
	}
	visiting[rec.ShortCode] = true
	defer delete(visiting, rec.ShortCode)

	return Decode(rec, func(shortCode string) (food.Food, error) {
		child, err := s.GetByShortCode(ctx, shortCode)
		if err != nil {
			return nil, err
		}
		return s.decode(ctx, child, visiting, depth+1)
	})
}

func (s *Service) countMiss() {
	if s.cache.IsAvailable() {
		telemetry.CatalogCacheRequestsTotal.WithLabelValues("miss").Inc()
	} else {
		telemetry.CatalogCacheRequestsTotal.WithLabelValues("disabled").Inc()
	}
}

func translate(err error, ref string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return err
}

// FlushCache drops every cached catalog entry. It is a no-op without a cache.
func (s *Service) FlushCache(ctx context.Context) error {
	if !s.cache.IsAvailable() {
		return nil
	}
	if err := s.cache.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush catalog cache: %w", err)
	}
	return nil
}
