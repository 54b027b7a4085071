package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"event-ticketing-api/internal/models"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched so that missing fields are reported by validation.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return err
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return models.NewValidationError(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
		}
		return models.NewValidationError("body", "request body must be valid JSON")
	}
	return nil
}

// parseID reads an integer path parameter. Anything that is not a positive
// integer cannot name a stored record and is reported as not found.
func parseID(r *http.Request, name string, notFound error) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}
