package models

import (
	"regexp"
	"strings"
	"time"
)

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

// User represents a user in the system
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Username     string    `json:"username" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest represents the data needed to register a new user
type UserCreateRequest struct {
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	Password  string   `json:"password"`
}

// UserUpdateRequest is a partial update of a user's own profile. Nil fields
// are left unchanged.
type UserUpdateRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`

	// Role is rejected; roles change through the role endpoint only.
	Role *UserRole `json:"role"`
}

// UserRoleUpdateRequest changes the role of a user.
type UserRoleUpdateRequest struct {
	Role UserRole `json:"role"`
}

var (
	// Email validation regex
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Normalize trims whitespace and lower-cases the email. Role defaults to User.
func (req *UserCreateRequest) Normalize() {
	req.Email = NormalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Role == "" {
		req.Role = UserRoleUser
	}
}

// Validate validates user registration data
func (req *UserCreateRequest) Validate() error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	if err := validateRequiredName("first_name", req.FirstName); err != nil {
		return err
	}

	if err := validateRequiredName("last_name", req.LastName); err != nil {
		return err
	}

	if err := validateUsername(req.Username); err != nil {
		return err
	}

	if !req.Role.Valid() {
		return NewValidationError("role", "role must be one of Admin, User")
	}

	return nil
}

// Validate validates a partial profile update
func (req *UserUpdateRequest) Validate() error {
	if req.Role != nil {
		return NewValidationError("role", "role cannot be changed here; use PUT /user/{id}/role/")
	}

	if req.Email != nil {
		normalized := NormalizeEmail(*req.Email)
		req.Email = &normalized
		if err := validateEmail(*req.Email); err != nil {
			return err
		}
	}

	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return err
		}
	}

	if req.FirstName != nil {
		if err := validateRequiredName("first_name", strings.TrimSpace(*req.FirstName)); err != nil {
			return err
		}
	}

	if req.LastName != nil {
		if err := validateRequiredName("last_name", strings.TrimSpace(*req.LastName)); err != nil {
			return err
		}
	}

	if req.Username != nil {
		if err := validateUsername(strings.TrimSpace(*req.Username)); err != nil {
			return err
		}
	}

	return nil
}

// ApplyTo copies the non-password fields of the request onto the user.
func (req *UserUpdateRequest) ApplyTo(u *User) {
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		u.Email = NormalizeEmail(*req.Email)
	}
}

// NormalizeEmail returns the canonical form used as the login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "email is required")
	}

	if len(email) > 255 {
		return NewValidationError("email", "email must be less than 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return NewValidationError("email", "email format is invalid")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "password is required")
	}

	if len(password) > 128 {
		return NewValidationError("password", "password must be less than 128 characters")
	}

	return nil
}

func validateRequiredName(field, name string) error {
	if name == "" {
		return NewValidationError(field, field+" is required")
	}

	if len(name) > 100 {
		return NewValidationError(field, field+" must be less than 100 characters")
	}

	return nil
}

func validateUsername(username string) error {
	if len(username) > 150 {
		return NewValidationError("username", "username must be less than 150 characters")
	}
	return nil
}

// IsAdmin returns true if the user is an admin
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// IsUser returns true if the user holds the regular User role
func (u *User) IsUser() bool {
	return u != nil && u.Role == UserRoleUser
}

// IsAdminUser reports whether the caller may use Admin-only operations.
func IsAdminUser(u *User) bool {
	return u.IsAdmin()
}

// IsUser reports whether the caller holds the User role required to buy tickets.
func IsUser(u *User) bool {
	return u.IsUser()
}
