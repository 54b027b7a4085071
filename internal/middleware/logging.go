package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/models"
)

type requestInfoKey struct{}

// requestInfo carries values discovered deeper in the chain back to the access log
type requestInfo struct {
	userEmail string
}

// LoggingMiddleware logs HTTP requests with logrus and attaches a request
// scoped logger and correlation id to the context
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := chimiddleware.GetReqID(r.Context())
		entry := logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		info := &requestInfo{}
		ctx := context.WithValue(r.Context(), requestInfoKey{}, info)
		ctx = logging.ToContext(ctx, entry)
		if requestID != "" {
			ctx = logging.WithCorrelationID(ctx, requestID)
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		user := info.userEmail
		if user == "" {
			user = "anonymous"
		}

		fields := logrus.Fields{
			"status":      wrapped.statusCode,
			"bytes":       wrapped.size,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
			"user":        user,
		}

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			entry.WithFields(fields).Error("Request completed")
		case wrapped.statusCode >= http.StatusBadRequest:
			entry.WithFields(fields).Warn("Request completed")
		default:
			entry.WithFields(fields).Info("Request completed")
		}
	})
}

func annotateUser(ctx context.Context, user *models.User) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok && user != nil {
		info.userEmail = user.Email
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
