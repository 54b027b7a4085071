package services

import (
	"context"
	"errors"
	"fmt"

	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/models"
)

// UserService handles user management
type UserService struct {
	userRepo  UserRepository
	hasher    PasswordHasher
	publisher messaging.Publisher
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, hasher PasswordHasher, publisher messaging.Publisher) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		publisher: publisher,
	}
}

// ListUsers returns every user. Admin only.
func (s *UserService) ListUsers(ctx context.Context, caller *models.User) ([]*models.User, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}
	return s.userRepo.List(ctx)
}

// UpdateUser applies a partial update to the caller's own record. The target
// must exist before ownership is checked.
func (s *UserService) UpdateUser(ctx context.Context, caller *models.User, id int, req *models.UserUpdateRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller == nil || caller.ID != user.ID {
		return nil, models.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	changed := changedUserFields(user, req)
	req.ApplyTo(user)

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			return nil, models.NewValidationError("email", "a user with this email already exists")
		}
		return nil, err
	}

	if len(changed) > 0 {
		publish(ctx, s.publisher, &messaging.UserUpdated{
			Header:        messaging.NewHeader(caller.ID),
			UserID:        user.ID,
			ChangedFields: changed,
		})
	}

	return user, nil
}

// UpdateRole sets the role of any user. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, caller *models.User, id int, role models.UserRole) (*models.User, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, models.NewValidationError("role", "role must be one of Admin, User")
	}

	previous := user.Role
	if previous == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	publish(ctx, s.publisher, &messaging.UserRoleChanged{
		Header:       messaging.NewHeader(caller.ID),
		UserID:       user.ID,
		PreviousRole: string(previous),
		Role:         string(role),
	})

	return user, nil
}

// EnsureAdmin creates an Admin account, or promotes the existing account with
// the same email. It reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, req *models.UserCreateRequest) (*models.User, bool, error) {
	req.Role = models.UserRoleAdmin
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.Role != models.UserRoleAdmin {
			if err := s.userRepo.UpdateRole(ctx, existing.ID, models.UserRoleAdmin); err != nil {
				return nil, false, err
			}
			publish(ctx, s.publisher, &messaging.UserRoleChanged{
				Header:       messaging.NewHeader(0),
				UserID:       existing.ID,
				PreviousRole: string(existing.Role),
				Role:         string(models.UserRoleAdmin),
			})
			existing.Role = models.UserRoleAdmin
		}
		return existing, false, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, false, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}

	publish(ctx, s.publisher, &messaging.UserRegistered{
		Header: messaging.NewHeader(0),
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	return user, true, nil
}

func changedUserFields(u *models.User, req *models.UserUpdateRequest) []string {
	var fields []string
	if req.Username != nil && *req.Username != u.Username {
		fields = append(fields, "username")
	}
	if req.FirstName != nil && *req.FirstName != u.FirstName {
		fields = append(fields, "first_name")
	}
	if req.LastName != nil && *req.LastName != u.LastName {
		fields = append(fields, "last_name")
	}
	if req.Email != nil && *req.Email != u.Email {
		fields = append(fields, "email")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}
	return fields
}
