package services

import (
	"context"

	"event-ticketing-api/internal/auth"
	"event-ticketing-api/internal/models"
)

// UserRepository interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id int, role models.UserRole) error
}

// EventRepository interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error
}

// TicketRepository interface for ticket data operations
type TicketRepository interface {
	Purchase(ctx context.Context, userID, eventID, quantity int) (*models.Ticket, error)
	GetForUser(ctx context.Context, id, userID int) (*models.Ticket, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Ticket, error)
}

// AuditLogRepository interface for reading the audit trail
type AuditLogRepository interface {
	List(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenManager issues and validates bearer tokens
type TokenManager interface {
	IssuePair(user *models.User) (*auth.TokenPair, error)
	IssueAccess(user *models.User) (string, error)
	ParseAccess(token string) (*auth.Claims, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

// AuthServiceInterface defines the interface for authentication services
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// UserServiceInterface defines the interface for user management
type UserServiceInterface interface {
	ListUsers(ctx context.Context, caller *models.User) ([]*models.User, error)
	UpdateUser(ctx context.Context, caller *models.User, id int, req *models.UserUpdateRequest) (*models.User, error)
	UpdateRole(ctx context.Context, caller *models.User, id int, role models.UserRole) (*models.User, error)
}

// EventServiceInterface defines the interface for event services
type EventServiceInterface interface {
	ListEvents(ctx context.Context, caller *models.User) ([]*models.Event, error)
	GetEvent(ctx context.Context, caller *models.User, id int) (*models.Event, error)
	CreateEvent(ctx context.Context, caller *models.User, req *models.EventCreateRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, caller *models.User, id int, req *models.EventUpdateRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, caller *models.User, id int) error
}

// TicketServiceInterface defines the interface for ticket services
type TicketServiceInterface interface {
	Purchase(ctx context.Context, caller *models.User, eventID int, req *models.TicketPurchaseRequest) (*models.Ticket, error)
	ListTickets(ctx context.Context, caller *models.User) ([]*models.Ticket, error)
	GetTicket(ctx context.Context, caller *models.User, id int) (*models.Ticket, error)
}

// AuditServiceInterface defines the interface for audit log queries
type AuditServiceInterface interface {
	ListRecent(ctx context.Context, caller *models.User, limit int) ([]*models.AuditLog, error)
}
