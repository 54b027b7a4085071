package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"event-ticketing-api/internal/auth"
	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/models"
)

// AuthService handles registration, login and bearer token resolution
type AuthService struct {
	userRepo  UserRepository
	hasher    PasswordHasher
	tokens    TokenManager
	publisher messaging.Publisher
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo UserRepository, hasher PasswordHasher, tokens TokenManager, publisher messaging.Publisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
	}
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register creates a regular user account. The Admin role cannot be
// self-assigned.
func (s *AuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	req.Normalize()

	if req.Role == models.UserRoleAdmin {
		return nil, models.NewValidationError("role", "the Admin role cannot be assigned at registration")
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			return nil, models.NewValidationError("email", "a user with this email already exists")
		}
		return nil, err
	}

	publish(ctx, s.publisher, &messaging.UserRegistered{
		Header: messaging.NewHeader(0),
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	return user, nil
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords yield the same error.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error) {
	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, models.ErrMissingCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, models.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return pair, nil
}

// Refresh issues a new access token for a valid refresh token whose user
// still exists
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", models.NewValidationError("refresh", "refresh is required")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}

	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return "", err
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

// Authenticate resolves an access token to the stored user. The user is read
// on every call so role changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}

	return s.userFromClaims(ctx, claims)
}

func (s *AuthService) userFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAuthentication
		}
		return nil, err
	}
	return user, nil
}
