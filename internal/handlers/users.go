package handlers

import (
	"net/http"

	"event-ticketing-api/internal/middleware"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/services"
)

// UserHandler handles user listing and profile updates
type UserHandler struct {
	userService services.UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns every user
//
// @Summary  List users
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} models.User
// @Failure  403 {object} response.ErrorBody
// @Router   /user/ [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context(), middleware.GetUserFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, users)
}

// Update changes the caller's own profile
//
// @Summary  Update my profile
// @Tags     users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                      true "User ID"
// @Param    body body models.UserUpdateRequest true "Fields to change"
// @Success  200 {object} models.User
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Router   /user/{id}/ [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", models.ErrUserNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req models.UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), middleware.GetUserFromContext(r.Context()), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// UpdateRole sets the role of any user
//
// @Summary  Change a user's role
// @Tags     users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                          true "User ID"
// @Param    body body models.UserRoleUpdateRequest true "New role"
// @Success  200 {object} models.User
// @Failure  400 {object} response.ErrorBody
// @Failure  403 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Router   /user/{id}/role/ [put]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id", models.ErrUserNotFound)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req models.UserRoleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), middleware.GetUserFromContext(r.Context()), id, req.Role)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}
