package services

import (
	"context"

	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/models"
)

// DefaultMaxTicketsPerPurchase caps a single purchase when no limit is configured
const DefaultMaxTicketsPerPurchase = 10

// TicketService handles ticket purchase and listing
type TicketService struct {
	ticketRepo     TicketRepository
	eventRepo      EventRepository
	publisher      messaging.Publisher
	maxPerPurchase int
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo TicketRepository, eventRepo EventRepository, publisher messaging.Publisher, maxPerPurchase int) *TicketService {
	if maxPerPurchase <= 0 {
		maxPerPurchase = DefaultMaxTicketsPerPurchase
	}
	return &TicketService{
		ticketRepo:     ticketRepo,
		eventRepo:      eventRepo,
		publisher:      publisher,
		maxPerPurchase: maxPerPurchase,
	}
}

// Purchase buys tickets for an event. Checks run in order: role, event
// existence, quantity, capacity.
func (s *TicketService) Purchase(ctx context.Context, caller *models.User, eventID int, req *models.TicketPurchaseRequest) (*models.Ticket, error) {
	if !models.IsUser(caller) {
		return nil, models.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(s.maxPerPurchase); err != nil {
		return nil, err
	}

	// Fast path only; the repository enforces capacity atomically.
	if !event.CanPurchase(req.Quantity) {
		return nil, models.ErrCapacityExceeded
	}

	ticket, err := s.ticketRepo.Purchase(ctx, caller.ID, eventID, req.Quantity)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, &messaging.TicketsPurchased{
		Header:   messaging.NewHeader(caller.ID),
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		UserID:   ticket.UserID,
		Quantity: ticket.Quantity,
	})

	return ticket, nil
}

// ListTickets returns the caller's own tickets
func (s *TicketService) ListTickets(ctx context.Context, caller *models.User) ([]*models.Ticket, error) {
	if caller == nil {
		return nil, models.ErrAuthentication
	}
	return s.ticketRepo.ListByUser(ctx, caller.ID)
}

// GetTicket returns one of the caller's tickets. Tickets owned by others are
// reported as not found.
func (s *TicketService) GetTicket(ctx context.Context, caller *models.User, id int) (*models.Ticket, error) {
	if caller == nil {
		return nil, models.ErrAuthentication
	}
	return s.ticketRepo.GetForUser(ctx, id, caller.ID)
}
