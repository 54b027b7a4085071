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

const ticketColumns = `id, user_id, event_id, quantity, created_at`

// TicketRepository handles ticket data operations
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Purchase reserves quantity seats on the event and records the ticket in one
// transaction. The conditional increment keeps tickets_sold within
// total_tickets no matter how many purchases race.
func (r *TicketRepository) Purchase(ctx context.Context, userID, eventID, quantity int) (*models.Ticket, error) {
	ticket := &models.Ticket{
		UserID:   userID,
		EventID:  eventID,
		Quantity: quantity,
	}

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		result, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE events
			SET tickets_sold = tickets_sold + ?, updated_at = ?
			WHERE id = ? AND tickets_sold + ? <= total_tickets`),
			quantity, now, eventID, quantity,
		)
		if err != nil {
			if isCheckViolation(err) {
				return models.ErrCapacityExceeded
			}
			return fmt.Errorf("failed to reserve tickets: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			var exists int
			if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), eventID); err != nil {
				return fmt.Errorf("failed to check event: %w", err)
			}
			if exists == 0 {
				return models.ErrEventNotFound
			}
			return models.ErrCapacityExceeded
		}

		err = tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO tickets (user_id, event_id, quantity, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id`),
			userID, eventID, quantity, now,
		).Scan(&ticket.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return models.ErrUserNotFound
			}
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		ticket.CreatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// GetForUser retrieves a ticket only if it belongs to userID. A ticket owned
// by someone else is reported as not found.
func (r *TicketRepository) GetForUser(ctx context.Context, id, userID int) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := r.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE id = ? AND user_id = ?`)

	if err := r.db.GetContext(ctx, ticket, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// ListByUser returns the tickets owned by userID, newest first
func (r *TicketRepository) ListByUser(ctx context.Context, userID int) ([]*models.Ticket, error) {
	tickets := []*models.Ticket{}
	query := r.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = ? ORDER BY id DESC`)

	if err := r.db.SelectContext(ctx, &tickets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}
