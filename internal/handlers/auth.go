package handlers

import (
	"net/http"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/services"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account
//
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body models.UserCreateRequest true "New user"
// @Success  201 {object} models.User
// @Failure  400 {object} response.ErrorBody
// @Router   /register/ [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).WithField("user_id", user.ID).Info("User registered")
	response.JSON(w, http.StatusCreated, user)
}

// Login exchanges credentials for an access/refresh token pair
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body services.LoginRequest true "Credentials"
// @Success  200 {object} auth.TokenPair
// @Failure  400 {object} response.ErrorBody
// @Failure  401 {object} response.ErrorBody
// @Router   /login/ [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	pair, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, pair)
}

// Refresh issues a new access token for a valid refresh token
//
// @Summary  Refresh an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body services.RefreshRequest true "Refresh token"
// @Success  200 {object} map[string]string
// @Failure  401 {object} response.ErrorBody
// @Router   /token/refresh/ [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	access, err := h.authService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"access": access})
}
