/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package integrity scans stored catalog and credential data for problems
// that the write paths would have rejected, such as rows edited by hand or
// left behind by older releases.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/models"
)

type FindingType string

const (
	FindingInvalidFood       FindingType = "invalid_food"
	FindingMissingIngredient FindingType = "missing_ingredient"
	FindingIngredientCycle   FindingType = "ingredient_cycle"
	FindingExpiredAPIKey     FindingType = "expired_api_key"
)

type Finding struct {
	ID         string         `json:"id"`
	Type       FindingType    `json:"type"`
	Severity   string         `json:"severity"`
	Summary    string         `json:"summary"`
	ResourceID string         `json:"resource_id"`
	Repairable bool           `json:"repairable"`
	Details    map[string]any `json:"details,omitempty"`
}

type Report struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	ByType      map[FindingType]int `json:"by_type"`
	Findings    []Finding           `json:"findings"`
}

type RepairInput struct {
	Type       FindingType `json:"type"`
	ResourceID string      `json:"resource_id"`
}

type RepairResult struct {
	Changed bool           `json:"changed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrNotRepairable is returned for finding types that need a human decision.
var ErrNotRepairable = errors.New("finding type cannot be repaired automatically")

type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "integrity").Logger(),
	}
}

// Scan loads the catalog and API keys and reports every finding.
func (s *Service) Scan(ctx context.Context) (*Report, error) {
	var foods []models.FoodRecord
	if err := s.db.WithContext(ctx).Order("short_code").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}

	findings := make([]Finding, 0, 16)
	findings = append(findings, scanInvalidFoods(foods)...)
	findings = append(findings, scanMissingIngredients(foods)...)
	findings = append(findings, scanIngredientCycles(foods)...)

	added, err := s.scanExpiredAPIKeys(ctx)
	if err != nil {
		return nil, err
	}
	findings = append(findings, added...)

	byType := make(map[FindingType]int)
	for _, f := range findings {
		byType[f.Type]++
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Total:       len(findings),
		ByType:      byType,
		Findings:    findings,
	}

	if report.Total > 0 {
		s.logger.Warn().Int("total_findings", report.Total).Interface("by_type", byType).Msg("integrity scan completed with findings")
	} else {
		s.logger.Info().Msg("integrity scan completed with no findings")
	}

	return report, nil
}

// Repair fixes a single finding. Repairs are idempotent.
func (s *Service) Repair(ctx context.Context, input RepairInput) (RepairResult, error) {
	switch input.Type {
	case FindingExpiredAPIKey:
		return s.repairExpiredAPIKey(ctx, input)
	case FindingInvalidFood, FindingMissingIngredient, FindingIngredientCycle:
		return RepairResult{}, fmt.Errorf("%w: %s", ErrNotRepairable, input.Type)
	default:
		return RepairResult{}, fmt.Errorf("unsupported finding type: %s", input.Type)
	}
}

func scanInvalidFoods(foods []models.FoodRecord) []Finding {
	var findings []Finding
	for i := range foods {
		rec := &foods[i]
		err := catalog.Validate(rec)
		if err == nil || errors.Is(err, catalog.ErrCycle) {
			continue
		}
		findings = append(findings, Finding{
			ID:         findingID(FindingInvalidFood, rec.ID),
			Type:       FindingInvalidFood,
			Severity:   "high",
			Summary:    "Food record does not decode",
			ResourceID: rec.ID,
			Details: map[string]any{
				"short_code": rec.ShortCode,
				"error":      err.Error(),
			},
		})
	}
	return findings
}

func scanMissingIngredients(foods []models.FoodRecord) []Finding {
	known := make(map[string]bool, len(foods))
	for _, rec := range foods {
		known[rec.ShortCode] = true
	}

	var findings []Finding
	for _, rec := range foods {
		for _, ing := range rec.Ingredients {
			if ing.ShortCode == "" || known[ing.ShortCode] {
				continue
			}
			findings = append(findings, Finding{
				ID:         findingID(FindingMissingIngredient, rec.ID+"/"+ing.ShortCode),
				Type:       FindingMissingIngredient,
				Severity:   "high",
				Summary:    "Recipe uses an ingredient that is not in the catalog",
				ResourceID: rec.ID,
				Details: map[string]any{
					"short_code": rec.ShortCode,
					"ingredient": ing.ShortCode,
				},
			})
		}
	}
	return findings
}

// scanIngredientCycles reports each recipe that can reach itself through its
// ingredients. Every member of a cycle gets its own finding.
func scanIngredientCycles(foods []models.FoodRecord) []Finding {
	byCode := make(map[string]*models.FoodRecord, len(foods))
	for i := range foods {
		byCode[foods[i].ShortCode] = &foods[i]
	}

	var findings []Finding
	for _, rec := range foods {
		if len(rec.Ingredients) == 0 || !reaches(byCode, rec.ShortCode, rec.ShortCode) {
			continue
		}
		findings = append(findings, Finding{
			ID:         findingID(FindingIngredientCycle, rec.ID),
			Type:       FindingIngredientCycle,
			Severity:   "high",
			Summary:    "Recipe contains itself through its ingredients",
			ResourceID: rec.ID,
			Details: map[string]any{
				"short_code": rec.ShortCode,
			},
		})
	}
	return findings
}

// reaches reports whether target is an ingredient of from, at any depth.
func reaches(byCode map[string]*models.FoodRecord, from, target string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		code := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec, ok := byCode[code]
		if !ok {
			continue
		}
		for _, ing := range rec.Ingredients {
			if ing.ShortCode == target {
				return true
			}
			if !seen[ing.ShortCode] {
				seen[ing.ShortCode] = true
				stack = append(stack, ing.ShortCode)
			}
		}
	}
	return false
}

func (s *Service) scanExpiredAPIKeys(ctx context.Context) ([]Finding, error) {
	var keys []models.APIKey
	if err := s.db.WithContext(ctx).
		Where("revoked_at IS NULL AND expires_at < ?", time.Now()).
		Order("expires_at").
		Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("load api keys: %w", err)
	}

	findings := make([]Finding, 0, len(keys))
	for _, k := range keys {
		findings = append(findings, Finding{
			ID:         findingID(FindingExpiredAPIKey, k.ID),
			Type:       FindingExpiredAPIKey,
			Severity:   "low",
			Summary:    "API key expired but was never revoked",
			ResourceID: k.ID,
			Repairable: true,
			Details: map[string]any{
				"owner":      k.Owner,
				"name":       k.Name,
				"expires_at": k.ExpiresAt.UTC(),
			},
		})
	}
	return findings, nil
}

func (s *Service) repairExpiredAPIKey(ctx context.Context, input RepairInput) (RepairResult, error) {
	var key models.APIKey
	if err := s.db.WithContext(ctx).First(&key, "id = ?", input.ResourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RepairResult{Changed: false, Message: "api key not found (already removed)"}, nil
		}
		return RepairResult{}, err
	}
	if key.IsRevoked() {
		return RepairResult{Changed: false, Message: "api key already revoked"}, nil
	}
	if !key.IsExpired() {
		return RepairResult{Changed: false, Message: "api key has not expired"}, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ? AND revoked_at IS NULL", key.ID).
		Update("revoked_at", now).Error; err != nil {
		return RepairResult{}, err
	}

	s.logger.Info().Str("api_key_id", key.ID).Msg("revoked expired api key")
	return RepairResult{
		Changed: true,
		Message: "expired api key revoked",
		Details: map[string]any{"api_key_id": key.ID},
	}, nil
}

func findingID(t FindingType, resourceID string) string {
	return fmt.Sprintf("%s|%s", t, resourceID)
}
