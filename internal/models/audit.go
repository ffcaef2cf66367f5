/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// AuditAction defines the type of audited action.
type AuditAction string

const (
	AuditActionFoodCreate    AuditAction = "food.create"
	AuditActionFoodDelete    AuditAction = "food.delete"
	AuditActionCatalogImport AuditAction = "catalog.import"
	AuditActionAPIKeyCreate  AuditAction = "apikey.create"
	AuditActionAPIKeyRevoke  AuditAction = "apikey.revoke"

	AuditActionIntegrityScan   AuditAction = "integrity.scan"
	AuditActionIntegrityRepair AuditAction = "integrity.repair"
	AuditActionCacheFlush      AuditAction = "cache.flush"
)

// AuditLog records catalog writes and credential changes.
type AuditLog struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"index:idx_audit_timestamp;not null" json:"timestamp"`
	Actor        string         `gorm:"type:varchar(255);index:idx_audit_actor" json:"actor"` // token subject or "cli"
	Action       AuditAction    `gorm:"type:varchar(64);index:idx_audit_action;not null" json:"action"`
	ResourceType string         `gorm:"type:varchar(64)" json:"resource_type"`
	ResourceID   string         `gorm:"type:varchar(64)" json:"resource_id"`
	Details      map[string]any `gorm:"serializer:json" json:"details,omitempty"`
	IPAddress    string         `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent    string         `gorm:"type:varchar(512)" json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}
