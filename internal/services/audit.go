package services

import (
	"context"

	"event-ticketing-api/internal/models"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditService exposes the audit trail to admins
type AuditService struct {
	auditRepo AuditLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// ListRecent returns the newest entries. limit is clamped to 1..MaxAuditLimit,
// with 0 meaning DefaultAuditLimit.
func (s *AuditService) ListRecent(ctx context.Context, caller *models.User, limit int) ([]*models.AuditLog, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}

	switch {
	case limit == 0:
		limit = DefaultAuditLimit
	case limit < 0:
		return nil, models.NewValidationError("limit", "limit must be a positive number")
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}

	return s.auditRepo.List(ctx, limit)
}
