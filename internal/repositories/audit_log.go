package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"event-ticketing-api/internal/models"
)

// AuditLogRepository handles audit log data operations
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, req *models.AuditLogCreateRequest) (*models.AuditLog, error) {
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	details := req.Details
	if len(details) == 0 {
		details = []byte("{}")
	}

	query := r.db.Rebind(`
		INSERT INTO audit_logs (actor_user_id, action, target_type, target_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	auditLog := &models.AuditLog{
		ActorUserID: req.ActorUserID,
		Action:      req.Action,
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		Details:     details,
		CreatedAt:   createdAt,
	}

	// details goes over the wire as text so jsonb accepts it
	err := r.db.QueryRowxContext(ctx, query,
		req.ActorUserID,
		req.Action,
		req.TargetType,
		req.TargetID,
		string(details),
		createdAt,
	).Scan(&auditLog.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	return auditLog, nil
}

// List returns the most recent audit log entries, newest first
func (r *AuditLogRepository) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	logs := []*models.AuditLog{}
	query := r.db.Rebind(`
		SELECT id, actor_user_id, action, target_type, target_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// ListByTarget returns the audit trail of a single entity, oldest first
func (r *AuditLogRepository) ListByTarget(ctx context.Context, targetType string, targetID int) ([]*models.AuditLog, error) {
	logs := []*models.AuditLog{}
	query := r.db.Rebind(`
		SELECT id, actor_user_id, action, target_type, target_id, details, created_at
		FROM audit_logs
		WHERE target_type = ? AND target_id = ?
		ORDER BY created_at, id`)

	if err := r.db.SelectContext(ctx, &logs, query, targetType, targetID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
