package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"event-ticketing-api/internal/models"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// ErrInvalidToken is returned for malformed, expired, or mistyped tokens.
var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims are the JWT claims issued for a user
type Claims struct {
	Email string    `json:"email"`
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject claim
func (c *Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, ErrInvalidToken)
	}
	return id, nil
}

// TokenPair is returned on successful login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager issues and verifies HS256 tokens
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a token manager signing with secret
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair creates a new access and refresh token for the user
func (m *TokenManager) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := m.issue(user, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := m.issue(user, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess creates a new access token for the user
func (m *TokenManager) IssueAccess(user *models.User) (string, error) {
	return m.issue(user, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) issue(user *models.User, typ TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Email: user.Email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// ParseAccess validates an access token and returns its claims
func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims
func (m *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeRefresh)
}

func (m *TokenManager) parse(tokenStr string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, want, claims.Type)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
