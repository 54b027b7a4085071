package handlers

import (
	"net/http"
	"strconv"

	"event-ticketing-api/internal/middleware"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/services"
)

// AuditHandler exposes the audit trail to admins
type AuditHandler struct {
	auditService services.AuditServiceInterface
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService services.AuditServiceInterface) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns the most recent audit entries
//
// @Summary  List audit entries
// @Tags     audit
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "Maximum entries (default 50, max 200)"
// @Success  200 {array} models.AuditLog
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Router   /audit/ [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if !models.IsAdminUser(caller) {
		response.Error(w, r, models.ErrForbidden)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, r, models.NewValidationError("limit", "limit must be an integer"))
			return
		}
		limit = parsed
	}

	logs, err := h.auditService.ListRecent(r.Context(), caller, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, logs)
}
