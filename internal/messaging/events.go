package messaging

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// Header is embedded in every domain event
type Header struct {
	ID          string    `json:"id"`
	ActorID     int       `json:"actor_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// NewHeader stamps a new event. actorID is 0 for anonymous actions.
func NewHeader(actorID int) Header {
	return Header{
		ID:          watermill.NewUUID(),
		ActorID:     actorID,
		PublishedAt: time.Now().UTC(),
	}
}

type UserRegistered struct {
	Header Header `json:"header"`
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UserUpdated struct {
	Header        Header   `json:"header"`
	UserID        int      `json:"user_id"`
	ChangedFields []string `json:"changed_fields"`
}

type UserRoleChanged struct {
	Header       Header `json:"header"`
	UserID       int    `json:"user_id"`
	PreviousRole string `json:"previous_role"`
	Role         string `json:"role"`
}

type EventCreated struct {
	Header       Header `json:"header"`
	EventID      int    `json:"event_id"`
	Name         string `json:"name"`
	TotalTickets int    `json:"total_tickets"`
}

type EventUpdated struct {
	Header       Header `json:"header"`
	EventID      int    `json:"event_id"`
	Name         string `json:"name"`
	TotalTickets int    `json:"total_tickets"`
}

type EventDeleted struct {
	Header  Header `json:"header"`
	EventID int    `json:"event_id"`
	Name    string `json:"name"`
}

type TicketsPurchased struct {
	Header   Header `json:"header"`
	TicketID int    `json:"ticket_id"`
	EventID  int    `json:"event_id"`
	UserID   int    `json:"user_id"`
	Quantity int    `json:"quantity"`
}
