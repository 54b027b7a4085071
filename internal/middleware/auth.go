package middleware

import (
	"context"
	"net/http"
	"strings"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Authenticator resolves a bearer token to the stored user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware provides bearer token authentication
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth rejects requests without a valid access token and stores the
// caller in the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Error(w, r, models.ErrAuthentication)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			response.Error(w, r, err)
			return
		}

		annotateUser(r.Context(), user)

		ctx := SetUserContext(r.Context(), user)
		ctx = logging.ToContext(ctx, logging.FromContext(ctx).WithField("user_id", user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetUserContext sets the user in the context
func SetUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
