package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AuditLog records a state-changing action taken through the API
type AuditLog struct {
	ID          int            `json:"id" db:"id"`
	ActorUserID *int           `json:"actor_user_id" db:"actor_user_id"`
	Action      string         `json:"action" db:"action"`
	TargetType  string         `json:"target_type" db:"target_type"`
	TargetID    int            `json:"target_id" db:"target_id"`
	Details     types.JSONText `json:"details" db:"details"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// AuditLogCreateRequest represents a request to create an audit log entry
type AuditLogCreateRequest struct {
	ActorUserID *int
	Action      string
	TargetType  string
	TargetID    int
	Details     types.JSONText
	CreatedAt   time.Time
}

// Common audit actions
const (
	AuditActionUserRegister   = "user_register"
	AuditActionUserUpdate     = "user_update"
	AuditActionUserRoleChange = "user_role_change"
	AuditActionEventCreate    = "event_create"
	AuditActionEventUpdate    = "event_update"
	AuditActionEventDelete    = "event_delete"
	AuditActionTicketPurchase = "ticket_purchase"
)

// Common target types
const (
	AuditTargetEvent  = "event"
	AuditTargetUser   = "user"
	AuditTargetTicket = "ticket"
)
