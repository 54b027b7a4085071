package handlers

import (
	"net/http"

	"event-ticketing-api/internal/middleware"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/services"
)

// EventHandler exposes event management. Every route is Admin-only.
type EventHandler struct {
	eventService services.EventServiceInterface
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService services.EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns all events
//
// @Summary  List events
// @Tags     events
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} models.Event
// @Failure  401 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Router   /events/ [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context(), middleware.GetUserFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, events)
}

// Create adds a new event
//
// @Summary  Create an event
// @Tags     events
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body models.EventCreateRequest true "Event"
// @Success  201 {object} models.Event
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Router   /events/ [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())

	var req models.EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), caller, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, event)
}

// Get returns a single event
//
// @Summary  Get an event
// @Tags     events
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Event ID"
// @Success  200 {object} models.Event
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Router   /events/{id}/ [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())

	// Role is checked before the id is interpreted.
	if !models.IsAdminUser(caller) {
		response.Error(w, r, models.ErrForbidden)
		return
	}

	id, err := parseID(r, "id", models.ErrEventNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), caller, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, event)
}

// Update applies a partial update to an event
//
// @Summary  Update an event
// @Tags     events
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                       true "Event ID"
// @Param    body body models.EventUpdateRequest true "Fields to change"
// @Success  200 {object} models.Event
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Router   /events/{id}/ [put]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())

	id, err := parseID(r, "id", models.ErrEventNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req models.EventUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), caller, id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, event)
}

// Delete removes an event that has no tickets
//
// @Summary  Delete an event
// @Tags     events
// @Security BearerAuth
// @Param    id path int true "Event ID"
// @Success  204
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Failure  409 {object} response.ErrorBody
// @Router   /events/{id}/ [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", models.ErrEventNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), middleware.GetUserFromContext(r.Context()), id); err != nil {
		response.Error(w, r, err)
		return
	}

	response.NoContent(w)
}
