/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/models"
)

// foodResponse is the JSON view of a catalog record.
type foodResponse struct {
	ID              string                 `json:"id"`
	ShortCode       string                 `json:"short_code"`
	Kind            models.FoodKind        `json:"kind"`
	Name            string                 `json:"name"`
	Names           map[string]string      `json:"names,omitempty"`
	DurationSeconds int64                  `json:"duration_seconds"`
	Ingredients     []models.IngredientRef `json:"ingredients,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func toFoodResponse(rec *models.FoodRecord) foodResponse {
	seconds, _ := catalog.DurationOf(rec)
	name := rec.Names[rec.DefaultLang]
	if name == "" {
		name = rec.ShortCode
	}
	return foodResponse{
		ID:              rec.ID,
		ShortCode:       rec.ShortCode,
		Kind:            rec.Kind,
		Name:            name,
		Names:           rec.Names,
		DurationSeconds: seconds,
		Ingredients:     rec.Ingredients,
		CreatedAt:       rec.CreatedAt,
	}
}

func (a *API) handleFoodsList(w http.ResponseWriter, r *http.Request) {
	recs, err := a.catalog.List(r.Context())
	if err != nil {
		a.writeCatalogError(w, err, "list foods failed")
		return
	}

	response := make([]foodResponse, len(recs))
	for i := range recs {
		response[i] = toFoodResponse(&recs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"foods": response,
		"total": len(response),
	})
}

func (a *API) handleFoodsGet(w http.ResponseWriter, r *http.Request) {
	rec, err := a.catalog.Find(r.Context(), chi.URLParam(r, "foodID"))
	if err != nil {
		a.writeCatalogError(w, err, "get food failed")
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponse(rec))
}

func (a *API) handleFoodsCreate(w http.ResponseWriter, r *http.Request) {
	var req catalog.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	rec := req.Record()
	if err := a.catalog.Create(r.Context(), rec, actor(r)); err != nil {
		a.writeCatalogError(w, err, "create food failed")
		return
	}
	writeJSON(w, http.StatusCreated, toFoodResponse(rec))
}

func (a *API) handleFoodsDelete(w http.ResponseWriter, r *http.Request) {
	rec, err := a.catalog.Find(r.Context(), chi.URLParam(r, "foodID"))
	if err != nil {
		a.writeCatalogError(w, err, "delete food failed")
		return
	}
	if err := a.catalog.Delete(r.Context(), rec.ID, actor(r)); err != nil {
		a.writeCatalogError(w, err, "delete food failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCatalogImport(w http.ResponseWriter, r *http.Request) {
	result, err := a.catalog.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), actor(r))
	if err != nil {
		a.writeCatalogError(w, err, "catalog import failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleCatalogExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if err := a.catalog.Export(r.Context(), w); err != nil {
		a.logger.Error().Err(err).Msg("catalog export failed")
	}
}
