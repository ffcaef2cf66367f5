/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/audit"
	"github.com/friendsincode/mealclock/internal/auth"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/integrity"
	"github.com/friendsincode/mealclock/internal/logbuffer"
	"github.com/friendsincode/mealclock/internal/planner"
)

// maxBodyBytes caps request bodies, including catalog imports.
const maxBodyBytes = 4 << 20

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	jwtSecret []byte
	catalog   *catalog.Service
	planner   *planner.Service
	auditSvc  *audit.Service
	logger    zerolog.Logger

	integritySvc *integrity.Service
	logBuffer    *logbuffer.Buffer
}

// New creates the API router wrapper.
func New(db *gorm.DB, jwtSecret []byte, catalogSvc *catalog.Service, plannerSvc *planner.Service, auditSvc *audit.Service, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		jwtSecret: jwtSecret,
		catalog:   catalogSvc,
		planner:   plannerSvc,
		auditSvc:  auditSvc,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// SetIntegrity enables the integrity scan endpoints.
func (a *API) SetIntegrity(svc *integrity.Service) {
	a.integritySvc = svc
}

// SetLogBuffer enables the system log endpoints.
func (a *API) SetLogBuffer(buf *logbuffer.Buffer) {
	a.logBuffer = buf
}

// Routes mounts API routes on provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Reads and prepend probes are public; nothing they do is stored.
		r.Get("/foods", a.handleFoodsList)
		r.Get("/foods/{foodID}", a.handleFoodsGet)
		r.Get("/catalog/export", a.handleCatalogExport)
		r.Post("/blocks/prepend", a.handlePrepend)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware())

			pr.With(auth.RequireScope(auth.ScopeCatalogWrite)).Post("/foods", a.handleFoodsCreate)
			pr.With(auth.RequireScope(auth.ScopeCatalogWrite)).Delete("/foods/{foodID}", a.handleFoodsDelete)
			pr.With(auth.RequireScope(auth.ScopeCatalogWrite)).Post("/catalog/import", a.handleCatalogImport)

			if a.auditSvc != nil {
				pr.With(auth.RequireScope(auth.ScopeAuditRead)).Get("/audit", a.handleAuditList)
			}

			pr.Route("/system", func(sr chi.Router) {
				sr.Use(auth.RequireScope(auth.ScopeAdmin))
				sr.Get("/integrity", a.handleIntegrityReport)
				sr.Post("/integrity/repair", a.handleIntegrityRepair)
				sr.Get("/logs", a.handleSystemLogs)
				sr.Get("/logs/stats", a.handleLogStats)
				sr.Delete("/logs", a.handleClearLogs)
				sr.Delete("/cache", a.handleFlushCache)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) authMiddleware() func(http.Handler) http.Handler {
	return auth.MiddlewareWithJWT(a.db, a.jwtSecret)
}

// actor names the caller for audit entries.
func actor(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims.Actor()
	}
	return "anonymous"
}

// writeCatalogError maps catalog errors to HTTP responses.
func (a *API) writeCatalogError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, catalog.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate")
	case errors.Is(err, catalog.ErrInUse):
		writeError(w, http.StatusConflict, "in_use")
	case errors.Is(err, catalog.ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid_food")
	case errors.Is(err, catalog.ErrCycle):
		writeError(w, http.StatusUnprocessableEntity, "ingredient_cycle")
	default:
		a.logger.Error().Err(err).Msg(msg)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
