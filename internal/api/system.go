/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/friendsincode/mealclock/internal/integrity"
	"github.com/friendsincode/mealclock/internal/logbuffer"
	"github.com/friendsincode/mealclock/internal/models"
)

type integrityRepairRequest struct {
	Type       string `json:"type"`
	ResourceID string `json:"resource_id"`
}

func (a *API) handleIntegrityReport(w http.ResponseWriter, r *http.Request) {
	if a.integritySvc == nil {
		writeError(w, http.StatusServiceUnavailable, "integrity_service_unavailable")
		return
	}

	report, err := a.integritySvc.Scan(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to run integrity scan")
		writeError(w, http.StatusInternalServerError, "scan_failed")
		return
	}

	a.logSystemAudit(r, models.AuditActionIntegrityScan, "integrity_report", "", map[string]any{
		"total":   report.Total,
		"by_type": report.ByType,
	})

	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleIntegrityRepair(w http.ResponseWriter, r *http.Request) {
	if a.integritySvc == nil {
		writeError(w, http.StatusServiceUnavailable, "integrity_service_unavailable")
		return
	}

	var req integrityRepairRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Type == "" || req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, "type_and_resource_id_required")
		return
	}

	result, err := a.integritySvc.Repair(r.Context(), integrity.RepairInput{
		Type:       integrity.FindingType(req.Type),
		ResourceID: req.ResourceID,
	})
	if errors.Is(err, integrity.ErrNotRepairable) {
		writeError(w, http.StatusUnprocessableEntity, "not_repairable")
		return
	}
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("type", req.Type).
			Str("resource_id", req.ResourceID).
			Msg("integrity repair failed")
		writeError(w, http.StatusInternalServerError, "repair_failed")
		return
	}

	a.logSystemAudit(r, models.AuditActionIntegrityRepair, "integrity_finding", req.ResourceID, map[string]any{
		"type":    req.Type,
		"changed": result.Changed,
		"message": result.Message,
	})

	writeJSON(w, http.StatusOK, result)
}

// logSystemAudit records admin actions that do not go through the event bus.
func (a *API) logSystemAudit(r *http.Request, action models.AuditAction, resourceType, resourceID string, details map[string]any) {
	if a.auditSvc == nil {
		return
	}

	entry := &models.AuditLog{
		Timestamp:    time.Now(),
		Actor:        actor(r),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	}
	if err := a.auditSvc.Log(r.Context(), entry); err != nil {
		a.logger.Error().Err(err).Str("action", string(action)).Msg("failed to write audit log")
	}
}

func (a *API) handleSystemLogs(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusServiceUnavailable, "log_buffer_unavailable")
		return
	}

	q := r.URL.Query()
	params := logbuffer.QueryParams{
		Level:      q.Get("level"),
		Component:  q.Get("component"),
		Search:     q.Get("search"),
		Limit:      500,
		Descending: q.Get("order") != "asc",
	}
	if since := q.Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			params.Since = t
		}
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			params.Limit = n
		}
	}

	entries := a.logBuffer.Query(params)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (a *API) handleLogStats(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusServiceUnavailable, "log_buffer_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, a.logBuffer.Stats())
}

func (a *API) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusServiceUnavailable, "log_buffer_unavailable")
		return
	}
	a.logBuffer.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleFlushCache(w http.ResponseWriter, r *http.Request) {
	if err := a.catalog.FlushCache(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("cache flush failed")
		writeError(w, http.StatusInternalServerError, "cache_flush_failed")
		return
	}
	a.logSystemAudit(r, models.AuditActionCacheFlush, "cache", "", nil)
	w.WriteHeader(http.StatusNoContent)
}
