package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/models"
)

// Error codes returned in the "code" field of error bodies
const (
	CodeAuthenticationFailed = "authentication_failed"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeMissingCredentials   = "missing_credentials"
	CodeForbidden            = "forbidden"
	CodeValidation           = "validation_error"
	CodeNotFound             = "not_found"
	CodeCapacityExceeded     = "capacity_exceeded"
	CodeEventHasTickets      = "event_has_tickets"
	CodeRateLimited          = "rate_limited"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeInternal             = "internal_error"
)

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
}

// JSON writes data with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

// NoContent writes an empty 204 response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps err to a status code and writes the error body. Unmapped errors
// are logged and reported as 500 without leaking their text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Describe(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("Request failed")
	}
	JSON(w, status, body)
}

// Describe returns the status code and body for err
func Describe(err error) (int, ErrorBody) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorBody{Detail: verr.Message, Code: CodeValidation, Field: verr.Field}
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, ErrorBody{Detail: err.Error(), Code: CodeValidation}
	case errors.Is(err, models.ErrMissingCredentials):
		return http.StatusBadRequest, ErrorBody{Detail: models.ErrMissingCredentials.Error(), Code: CodeMissingCredentials}
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorBody{Detail: models.ErrInvalidCredentials.Error(), Code: CodeInvalidCredentials}
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized, ErrorBody{Detail: models.ErrAuthentication.Error(), Code: CodeAuthenticationFailed}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Detail: models.ErrForbidden.Error(), Code: CodeForbidden}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Detail: notFoundDetail(err), Code: CodeNotFound}
	case errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusBadRequest, ErrorBody{Detail: "Not enough tickets available", Code: CodeCapacityExceeded}
	case errors.Is(err, models.ErrEventHasTickets):
		return http.StatusConflict, ErrorBody{Detail: models.ErrEventHasTickets.Error(), Code: CodeEventHasTickets}
	default:
		return http.StatusInternalServerError, ErrorBody{Detail: "internal server error", Code: CodeInternal}
	}
}

func notFoundDetail(err error) string {
	for _, known := range []error{models.ErrUserNotFound, models.ErrEventNotFound, models.ErrTicketNotFound} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return models.ErrNotFound.Error()
}
