package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/response"
)

// ErrorHandlingMiddleware recovers panics and answers with a JSON 500
func ErrorHandlingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logging.FromContext(r.Context()).
					WithField("stack", string(debug.Stack())).
					Errorf("PANIC: %v", rec)

				response.JSON(w, http.StatusInternalServerError, response.ErrorBody{
					Detail: "internal server error",
					Code:   response.CodeInternal,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// NotFoundHandler answers unknown routes
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusNotFound, response.ErrorBody{
			Detail: fmt.Sprintf("no route for %s", r.URL.Path),
			Code:   response.CodeNotFound,
		})
	})
}

// MethodNotAllowedHandler answers known routes called with the wrong method
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, response.ErrorBody{
			Detail: fmt.Sprintf("method %s not allowed", r.Method),
			Code:   response.CodeMethodNotAllowed,
		})
	})
}
