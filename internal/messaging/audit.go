package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-ticketing-api/internal/models"
)

// AuditRecorder persists audit log entries
type AuditRecorder interface {
	Create(ctx context.Context, req *models.AuditLogCreateRequest) (*models.AuditLog, error)
}

type auditHandler struct {
	recorder AuditRecorder
}

func (h auditHandler) record(ctx context.Context, header Header, action, targetType string, targetID int, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshaling audit details: %w", err)
	}

	var actor *int
	if header.ActorID > 0 {
		id := header.ActorID
		actor = &id
	}

	createdAt := header.PublishedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = h.recorder.Create(ctx, &models.AuditLogCreateRequest{
		ActorUserID: actor,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Details:     raw,
		CreatedAt:   createdAt,
	})
	if err != nil {
		return fmt.Errorf("recording %s: %w", action, err)
	}
	return nil
}

func (h auditHandler) onUserRegistered(ctx context.Context, e *UserRegistered) error {
	return h.record(ctx, e.Header, models.AuditActionUserRegister, models.AuditTargetUser, e.UserID, map[string]any{
		"email": e.Email,
		"role":  e.Role,
	})
}

func (h auditHandler) onUserUpdated(ctx context.Context, e *UserUpdated) error {
	return h.record(ctx, e.Header, models.AuditActionUserUpdate, models.AuditTargetUser, e.UserID, map[string]any{
		"changed_fields": e.ChangedFields,
	})
}

func (h auditHandler) onUserRoleChanged(ctx context.Context, e *UserRoleChanged) error {
	return h.record(ctx, e.Header, models.AuditActionUserRoleChange, models.AuditTargetUser, e.UserID, map[string]any{
		"previous_role": e.PreviousRole,
		"role":          e.Role,
	})
}

func (h auditHandler) onEventCreated(ctx context.Context, e *EventCreated) error {
	return h.record(ctx, e.Header, models.AuditActionEventCreate, models.AuditTargetEvent, e.EventID, map[string]any{
		"name":          e.Name,
		"total_tickets": e.TotalTickets,
	})
}

func (h auditHandler) onEventUpdated(ctx context.Context, e *EventUpdated) error {
	return h.record(ctx, e.Header, models.AuditActionEventUpdate, models.AuditTargetEvent, e.EventID, map[string]any{
		"name":          e.Name,
		"total_tickets": e.TotalTickets,
	})
}

func (h auditHandler) onEventDeleted(ctx context.Context, e *EventDeleted) error {
	return h.record(ctx, e.Header, models.AuditActionEventDelete, models.AuditTargetEvent, e.EventID, map[string]any{
		"name": e.Name,
	})
}

func (h auditHandler) onTicketsPurchased(ctx context.Context, e *TicketsPurchased) error {
	return h.record(ctx, e.Header, models.AuditActionTicketPurchase, models.AuditTargetTicket, e.TicketID, map[string]any{
		"event_id": e.EventID,
		"quantity": e.Quantity,
	})
}
