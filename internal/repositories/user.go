package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"event-ticketing-api/internal/models"
)

const userColumns = `id, email, password_hash, username, first_name, last_name, role, created_at, updated_at`

// UserRepository handles user data operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	query := r.db.Rebind(`
		INSERT INTO users (email, password_hash, username, first_name, last_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Role,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, models.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	if err := r.db.GetContext(ctx, user, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns all users ordered by ID
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update persists the profile fields and password hash of an existing user.
// The role is not touched.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE users
		SET email = ?, password_hash = ?, username = ?, first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Username,
		user.FirstName,
		user.LastName,
		now,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, models.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := expectAffected(result, models.ErrUserNotFound); err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

// UpdateRole changes the role of a user
func (r *UserRepository) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	query := r.db.Rebind(`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return expectAffected(result, models.ErrUserNotFound)
}

// Count returns the number of users with the given role, or all users when
// role is empty.
func (r *UserRepository) Count(ctx context.Context, role models.UserRole) (int, error) {
	var count int
	var err error
	if role == "" {
		err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	} else {
		err = r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE role = ?`), role)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
