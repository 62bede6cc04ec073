// Package handlers implements the REST endpoints.
package handlers

import (
	"net/http"

	"chirp/application/services"
	"chirp/domain/entities"
	"chirp/pkg/auth"
	"chirp/pkg/common"
	"chirp/pkg/utils"

	"go.uber.org/zap"
)

// AuthHandler handles registration, login, logout and identity lookup
type AuthHandler struct {
	service  *services.AuthService
	logger   *zap.Logger
	maxBytes int64
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *services.AuthService, logger *zap.Logger, maxBytes int64) *AuthHandler {
	return &AuthHandler{
		service:  service,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// RegisterRequest represents the request body for registering
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is the body returned when a session is established
type sessionResponse struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	ProfileImage string   `json:"profileImage,omitempty"`
	Followers    []string `json:"followers"`
	Following    []string `json:"following"`
}

func newSessionResponse(user *entities.User) sessionResponse {
	return sessionResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Followers:    user.Followers,
		Following:    user.Following,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := common.DecodeJSONBody(r, &req, h.maxBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token))
	common.RespondJSON(w, http.StatusOK, newSessionResponse(user))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.DecodeJSONBody(r, &req, h.maxBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token))
	common.RespondJSON(w, http.StatusOK, newSessionResponse(user))
}

// Logout handles POST /api/auth/logout.
// Sessions are stateless, so logging out is clearing the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie())
	common.RespondMessage(w, "user has logged out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	user, err := h.service.Me(r.Context(), actor.ID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}
