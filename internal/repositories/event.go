package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/models"
)

const eventColumns = `id, name, description, location, event_date, total_tickets, tickets_sold, created_at, updated_at`

// EventRepository handles event data operations
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. tickets_sold always starts at zero.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	event.TicketsSold = 0

	query := r.db.Rebind(`
		INSERT INTO events (name, description, location, event_date, total_tickets, tickets_sold, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		event.Name,
		event.Description,
		event.Location,
		utcPtr(event.Date),
		event.TotalTickets,
		now,
		now,
	).Scan(&event.ID)
	if err != nil {
		if isCheckViolation(err) {
			return models.NewValidationError("total_tickets", "total_tickets must not be negative")
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event := &models.Event{}
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = ?`)

	if err := r.db.GetContext(ctx, event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List returns all events, soonest first. Undated events sort last.
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	events := []*models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events
		ORDER BY CASE WHEN event_date IS NULL THEN 1 ELSE 0 END, event_date, id`

	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Update persists the mutable fields of an event. The write is rejected when
// the new capacity is below the tickets sold at the time of the update.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE events
		SET name = ?, description = ?, location = ?, event_date = ?, total_tickets = ?, updated_at = ?
		WHERE id = ? AND tickets_sold <= ?`)

	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.Location,
		utcPtr(event.Date),
		event.TotalTickets,
		now,
		event.ID,
		event.TotalTickets,
	)
	if err != nil {
		if isCheckViolation(err) {
			return models.NewValidationError("total_tickets", "total_tickets cannot be less than tickets already sold")
		}
		return fmt.Errorf("failed to update event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		current, err := r.GetByID(ctx, event.ID)
		if err != nil {
			return err
		}
		event.TicketsSold = current.TicketsSold
		return models.NewValidationError("total_tickets", "total_tickets cannot be less than tickets already sold")
	}

	event.UpdatedAt = now
	return nil
}

// Delete removes an event that has no purchased tickets.
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var tickets int
		if err := tx.GetContext(ctx, &tickets, tx.Rebind(`SELECT COUNT(*) FROM tickets WHERE event_id = ?`), id); err != nil {
			return fmt.Errorf("failed to count event tickets: %w", err)
		}
		if tickets > 0 {
			return models.ErrEventHasTickets
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM events WHERE id = ?`), id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return models.ErrEventHasTickets
			}
			return fmt.Errorf("failed to delete event: %w", err)
		}

		return expectAffected(result, models.ErrEventNotFound)
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
