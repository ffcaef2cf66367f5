/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/models"
)

// API key constants
const (
	APIKeyPrefix      = "mc_"
	APIKeyRandomBytes = 24 // 192 bits
)

// ErrAPIKeyNotFound is returned when an API key doesn't exist.
var ErrAPIKeyNotFound = errors.New("api key not found")

// ErrAPIKeyExpired is returned when an API key has expired.
var ErrAPIKeyExpired = errors.New("api key expired")

// ErrAPIKeyRevoked is returned when an API key has been revoked.
var ErrAPIKeyRevoked = errors.New("api key revoked")

// ErrUnknownScope is returned when asked to grant a scope that does not exist.
var ErrUnknownScope = errors.New("unknown scope")

// GenerateAPIKey creates a new API key for owner.
// Returns the plaintext key (to show to the caller once) and the model to store.
func GenerateAPIKey(owner, name string, scopes []string, expiresIn time.Duration) (string, *models.APIKey, error) {
	for _, s := range scopes {
		if !slices.Contains(KnownScopes, s) {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownScope, s)
		}
	}

	randomBytes := make([]byte, APIKeyRandomBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", nil, err
	}

	plaintextKey := APIKeyPrefix + hex.EncodeToString(randomBytes)

	apiKey := &models.APIKey{
		ID:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		Scopes:    slices.Clone(scopes),
		KeyHash:   hashKey(plaintextKey),
		KeyPrefix: plaintextKey[:11], // "mc_" + first 8 hex chars
		ExpiresAt: time.Now().Add(expiresIn),
	}

	return plaintextKey, apiKey, nil
}

// ValidateAPIKey validates an API key and returns claims if valid.
// Also updates the LastUsedAt timestamp.
func ValidateAPIKey(db *gorm.DB, plaintextKey string) (*Claims, error) {
	var apiKey models.APIKey
	result := db.Where("key_hash = ?", hashKey(plaintextKey)).First(&apiKey)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrAPIKeyNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	if apiKey.IsRevoked() {
		return nil, ErrAPIKeyRevoked
	}
	if apiKey.IsExpired() {
		return nil, ErrAPIKeyExpired
	}

	if err := db.Model(&apiKey).Update("last_used_at", time.Now()).Error; err != nil {
		return nil, err
	}

	claims := &Claims{
		Name:   apiKey.Name,
		Scopes: apiKey.Scopes,
	}
	claims.Subject = apiKey.Owner
	claims.ID = apiKey.ID

	return claims, nil
}

// RevokeAPIKey revokes an API key. An empty owner matches any owner.
func RevokeAPIKey(db *gorm.DB, keyID, owner string) error {
	query := db.Model(&models.APIKey{}).Where("id = ? AND revoked_at IS NULL", keyID)
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}
	result := query.Update("revoked_at", time.Now())

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}

	return nil
}

// ListAPIKeys returns API keys, newest first. An empty owner lists every key.
func ListAPIKeys(db *gorm.DB, owner string) ([]models.APIKey, error) {
	var keys []models.APIKey
	query := db.Order("created_at DESC")
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}
	err := query.Find(&keys).Error

	return keys, err
}

func hashKey(plaintextKey string) string {
	hash := sha256.Sum256([]byte(plaintextKey))
	return hex.EncodeToString(hash[:])
}
