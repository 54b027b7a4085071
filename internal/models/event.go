package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Event represents a sellable event with a fixed ticket capacity
type Event struct {
	ID           int        `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Location     string     `json:"location" db:"location"`
	Date         *time.Time `json:"date" db:"event_date"`
	TotalTickets int        `json:"total_tickets" db:"total_tickets"`
	TicketsSold  int        `json:"tickets_sold" db:"tickets_sold"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// EventCreateRequest represents the data needed to create a new event.
// tickets_sold is not accepted from clients.
type EventCreateRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Date         *time.Time `json:"date"`
	TotalTickets *int       `json:"total_tickets"`
}

// EventUpdateRequest is a partial event update. Nil fields are left unchanged.
type EventUpdateRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	Date         *time.Time `json:"date"`
	TotalTickets *int       `json:"total_tickets"`
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)

	if err := validateEventName(req.Name); err != nil {
		return err
	}

	if err := validateLocation(req.Location); err != nil {
		return err
	}

	if req.TotalTickets == nil {
		return NewValidationError("total_tickets", "total_tickets is required")
	}

	if *req.TotalTickets < 0 {
		return NewValidationError("total_tickets", "total_tickets must not be negative")
	}

	return nil
}

// Validate validates a partial event update
func (req *EventUpdateRequest) Validate() error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		if err := validateEventName(name); err != nil {
			return err
		}
	}

	if req.Location != nil {
		if err := validateLocation(*req.Location); err != nil {
			return err
		}
	}

	if req.TotalTickets != nil && *req.TotalTickets < 0 {
		return NewValidationError("total_tickets", "total_tickets must not be negative")
	}

	return nil
}

// ApplyTo merges the update into the event. Capacity may not drop below the
// number of tickets already sold.
func (req *EventUpdateRequest) ApplyTo(e *Event) error {
	if req.TotalTickets != nil && *req.TotalTickets < e.TicketsSold {
		return NewValidationError("total_tickets", "total_tickets cannot be less than tickets already sold")
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Date != nil {
		e.Date = req.Date
	}
	if req.TotalTickets != nil {
		e.TotalTickets = *req.TotalTickets
	}

	return nil
}

// AvailableTickets returns the remaining capacity
func (e *Event) AvailableTickets() int {
	return e.TotalTickets - e.TicketsSold
}

// MarshalJSON adds the remaining capacity as available_tickets
func (e Event) MarshalJSON() ([]byte, error) {
	type event Event
	return json.Marshal(struct {
		event
		AvailableTickets int `json:"available_tickets"`
	}{
		event:            event(e),
		AvailableTickets: e.AvailableTickets(),
	})
}

// CanPurchase reports whether quantity tickets fit in the remaining capacity
func (e *Event) CanPurchase(quantity int) bool {
	return quantity > 0 && e.TicketsSold+quantity <= e.TotalTickets
}

func validateEventName(name string) error {
	if name == "" {
		return NewValidationError("name", "name is required")
	}
	if len(name) > 255 {
		return NewValidationError("name", "name must be less than 255 characters")
	}
	return nil
}

func validateLocation(location string) error {
	if len(location) > 255 {
		return NewValidationError("location", "location must be less than 255 characters")
	}
	return nil
}
