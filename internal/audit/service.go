/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/events"
	"github.com/friendsincode/mealclock/internal/models"
)

// Service handles audit logging by subscribing to events and storing audit entries.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a new audit service.
func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

type subscriptions struct {
	foodCreated     events.Subscriber
	foodDeleted     events.Subscriber
	catalogImported events.Subscriber
	apiKeyCreated   events.Subscriber
	apiKeyRevoked   events.Subscriber
}

func (s *Service) subscribe() subscriptions {
	return subscriptions{
		foodCreated:     s.bus.Subscribe(events.EventFoodCreated),
		foodDeleted:     s.bus.Subscribe(events.EventFoodDeleted),
		catalogImported: s.bus.Subscribe(events.EventCatalogImported),
		apiKeyCreated:   s.bus.Subscribe(events.EventAPIKeyCreated),
		apiKeyRevoked:   s.bus.Subscribe(events.EventAPIKeyRevoked),
	}
}

func (s *Service) unsubscribe(subs subscriptions) {
	s.bus.Unsubscribe(events.EventFoodCreated, subs.foodCreated)
	s.bus.Unsubscribe(events.EventFoodDeleted, subs.foodDeleted)
	s.bus.Unsubscribe(events.EventCatalogImported, subs.catalogImported)
	s.bus.Unsubscribe(events.EventAPIKeyCreated, subs.apiKeyCreated)
	s.bus.Unsubscribe(events.EventAPIKeyRevoked, subs.apiKeyRevoked)
}

// Listen subscribes to catalog and credential events before returning and
// records them in the background until ctx is cancelled. Events already
// published when ctx ends are still recorded; the returned channel is closed
// once they are.
func (s *Service) Listen(ctx context.Context) <-chan struct{} {
	subs := s.subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, subs)
	}()
	return done
}

func (s *Service) run(ctx context.Context, subs subscriptions) {
	s.logger.Debug().Msg("audit service started")

	for {
		select {
		case <-ctx.Done():
			s.unsubscribe(subs)
			s.drain(context.WithoutCancel(ctx), subs)
			s.logger.Debug().Msg("audit service stopped")
			return

		case payload := <-subs.foodCreated:
			s.logAuditEntry(ctx, models.AuditActionFoodCreate, payload)

		case payload := <-subs.foodDeleted:
			s.logAuditEntry(ctx, models.AuditActionFoodDelete, payload)

		case payload := <-subs.catalogImported:
			s.logAuditEntry(ctx, models.AuditActionCatalogImport, payload)

		case payload := <-subs.apiKeyCreated:
			s.logAuditEntry(ctx, models.AuditActionAPIKeyCreate, payload)

		case payload := <-subs.apiKeyRevoked:
			s.logAuditEntry(ctx, models.AuditActionAPIKeyRevoke, payload)
		}
	}
}

// drain records events left in the closed subscriber buffers.
func (s *Service) drain(ctx context.Context, subs subscriptions) {
	for payload := range subs.foodCreated {
		s.logAuditEntry(ctx, models.AuditActionFoodCreate, payload)
	}
	for payload := range subs.foodDeleted {
		s.logAuditEntry(ctx, models.AuditActionFoodDelete, payload)
	}
	for payload := range subs.catalogImported {
		s.logAuditEntry(ctx, models.AuditActionCatalogImport, payload)
	}
	for payload := range subs.apiKeyCreated {
		s.logAuditEntry(ctx, models.AuditActionAPIKeyCreate, payload)
	}
	for payload := range subs.apiKeyRevoked {
		s.logAuditEntry(ctx, models.AuditActionAPIKeyRevoke, payload)
	}
}

// logAuditEntry creates an audit log entry from an event payload.
func (s *Service) logAuditEntry(ctx context.Context, action models.AuditAction, payload events.Payload) {
	entry := &models.AuditLog{
		Action:  action,
		Details: make(map[string]any),
	}

	if actor, ok := payload["actor"].(string); ok {
		entry.Actor = actor
	}
	if resourceType, ok := payload["resource_type"].(string); ok {
		entry.ResourceType = resourceType
	}
	if resourceID, ok := payload["resource_id"].(string); ok {
		entry.ResourceID = resourceID
	}
	if ipAddress, ok := payload["ip_address"].(string); ok {
		entry.IPAddress = ipAddress
	}
	if userAgent, ok := payload["user_agent"].(string); ok {
		entry.UserAgent = userAgent
	}

	for k, v := range payload {
		switch k {
		case "actor", "resource_type", "resource_id", "ip_address", "user_agent":
		default:
			entry.Details[k] = v
		}
	}

	if err := s.Log(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", string(action)).
			Msg("failed to log audit entry")
	}
}

// Log records an audit entry directly (for non-event-bus actions).
func (s *Service) Log(ctx context.Context, entry *models.AuditLog) error {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.Details == nil {
		entry.Details = make(map[string]any)
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	s.logger.Debug().
		Str("action", string(entry.Action)).
		Str("id", entry.ID).
		Msg("audit entry logged")

	return nil
}

// QueryFilters defines filters for querying audit logs.
type QueryFilters struct {
	Actor     *string
	Action    *models.AuditAction
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Query retrieves audit logs with filters, most recent first.
func (s *Service) Query(ctx context.Context, filters QueryFilters) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filters.Actor != nil {
		query = query.Where("actor = ?", *filters.Actor)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.StartTime != nil {
		query = query.Where("timestamp >= ?", *filters.StartTime)
	}
	if filters.EndTime != nil {
		query = query.Where("timestamp <= ?", *filters.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	} else {
		query = query.Limit(100)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
