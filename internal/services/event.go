package services

import (
	"context"

	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/models"
)

// EventService handles event business logic. Every operation is Admin only.
type EventService struct {
	eventRepo EventRepository
	publisher messaging.Publisher
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepository, publisher messaging.Publisher) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		publisher: publisher,
	}
}

// ListEvents returns all events
func (s *EventService) ListEvents(ctx context.Context, caller *models.User) ([]*models.Event, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}
	return s.eventRepo.List(ctx)
}

// GetEvent returns one event. The role is checked before existence.
func (s *EventService) GetEvent(ctx context.Context, caller *models.User, id int) (*models.Event, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}
	return s.eventRepo.GetByID(ctx, id)
}

// CreateEvent creates an event with no tickets sold
func (s *EventService) CreateEvent(ctx context.Context, caller *models.User, req *models.EventCreateRequest) (*models.Event, error) {
	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Date:         req.Date,
		TotalTickets: *req.TotalTickets,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, &messaging.EventCreated{
		Header:       messaging.NewHeader(caller.ID),
		EventID:      event.ID,
		Name:         event.Name,
		TotalTickets: event.TotalTickets,
	})

	return event, nil
}

// UpdateEvent applies a partial update. Existence is checked before the role.
func (s *EventService) UpdateEvent(ctx context.Context, caller *models.User, id int, req *models.EventUpdateRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.IsAdminUser(caller) {
		return nil, models.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := req.ApplyTo(event); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, &messaging.EventUpdated{
		Header:       messaging.NewHeader(caller.ID),
		EventID:      event.ID,
		Name:         event.Name,
		TotalTickets: event.TotalTickets,
	})

	return event, nil
}

// DeleteEvent removes an event without purchased tickets. Existence is
// checked before the role.
func (s *EventService) DeleteEvent(ctx context.Context, caller *models.User, id int) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !models.IsAdminUser(caller) {
		return models.ErrForbidden
	}

	if event.TicketsSold > 0 {
		return models.ErrEventHasTickets
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, &messaging.EventDeleted{
		Header:  messaging.NewHeader(caller.ID),
		EventID: event.ID,
		Name:    event.Name,
	})

	return nil
}
