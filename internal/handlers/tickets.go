package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/middleware"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/services"
)

// TicketHandler handles ticket purchase and the caller's ticket history
type TicketHandler struct {
	ticketService services.TicketServiceInterface
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService services.TicketServiceInterface) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Purchase buys tickets for an event
//
// @Summary  Purchase tickets
// @Tags     tickets
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                          true "Event ID"
// @Param    body body models.TicketPurchaseRequest true "Quantity"
// @Success  201 {object} models.Ticket
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Router   /tickets/{id}/purchase/ [post]
func (h *TicketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())

	if !models.IsUser(caller) {
		response.Error(w, r, models.ErrForbidden)
		return
	}

	eventID, err := parseID(r, "id", models.ErrEventNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req models.TicketPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	ticket, err := h.ticketService.Purchase(r.Context(), caller, eventID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"event_id":  ticket.EventID,
		"quantity":  ticket.Quantity,
	}).Info("Tickets purchased")

	response.JSON(w, http.StatusCreated, ticket)
}

// List returns the caller's tickets
//
// @Summary  List my tickets
// @Tags     tickets
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} models.Ticket
// @Failure  401 {object} response.ErrorBody
// @Router   /tickets/ [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketService.ListTickets(r.Context(), middleware.GetUserFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, tickets)
}

// Get returns one of the caller's tickets
//
// @Summary  Get one of my tickets
// @Tags     tickets
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Ticket ID"
// @Success  200 {object} models.Ticket
// @Failure  404 {object} response.ErrorBody
// @Router   /tickets/{id}/ [get]
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", models.ErrTicketNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), middleware.GetUserFromContext(r.Context()), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ticket)
}
