package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ticket is an immutable purchase record linking a user to an event
type Ticket struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TicketPurchaseRequest represents a request to buy tickets for an event.
// A missing quantity decodes as zero.
type TicketPurchaseRequest struct {
	Quantity int `json:"quantity"`
}

// UnmarshalJSON accepts quantity as a JSON number or a numeric string.
func (req *TicketPurchaseRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	req.Quantity = 0
	value := bytes.TrimSpace(raw.Quantity)
	if len(value) == 0 || string(value) == "null" {
		return nil
	}

	text := string(value)
	if value[0] == '"' {
		if err := json.Unmarshal(value, &text); err != nil {
			return err
		}
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return NewValidationError("quantity", "quantity must be a whole number")
	}
	req.Quantity = quantity
	return nil
}

// Validate checks the quantity against the per-purchase limit.
func (req *TicketPurchaseRequest) Validate(maxPerPurchase int) error {
	if req.Quantity == 0 {
		return NewValidationError("quantity", "Please select at least one ticket to proceed.")
	}

	if req.Quantity < 0 {
		return NewValidationError("quantity", "quantity must be a positive number")
	}

	if maxPerPurchase > 0 && req.Quantity > maxPerPurchase {
		return NewValidationError("quantity", fmt.Sprintf("you can purchase at most %d tickets at once", maxPerPurchase))
	}

	return nil
}
