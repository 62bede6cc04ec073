package handlers

import (
	"fmt"
	"net/http"

	"chirp/application/services"
	"chirp/pkg/auth"
	"chirp/pkg/common"
	"chirp/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler handles profiles and the follow graph
type UserHandler struct {
	service  *services.UserService
	logger   *zap.Logger
	maxBytes int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *services.UserService, logger *zap.Logger, maxBytes int64) *UserHandler {
	return &UserHandler{
		service:  service,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// UpdateProfileRequest represents the request body for a profile update.
// Every field is optional; currentPassword and newPassword come in pairs.
type UpdateProfileRequest struct {
	Username        string `json:"username" validate:"omitempty,min=3,max=30"`
	Email           string `json:"email" validate:"omitempty,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ProfileImage    string `json:"profileImage"`
}

// Profile handles GET /api/users/profile/{username}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// Suggested handles GET /api/users/suggested
func (h *UserHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	users, err := h.service.GetSuggested(r.Context(), actor.ID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, users)
}

// Follow handles POST /api/users/follow/{id}, toggling the relation
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	targetID := chi.URLParam(r, "id")

	result, err := h.service.FollowOrUnfollow(r.Context(), actor.ID, targetID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	verb := "unfollowed"
	if result.Followed {
		verb = "followed"
	}
	common.RespondMessage(w, fmt.Sprintf("%s %s %s", actor.Username, verb, result.Target.Username))
}

// Update handles PATCH /api/users/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	var req UpdateProfileRequest
	if err := common.DecodeJSONBody(r, &req, h.maxBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), actor.ID, services.UpdateProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImage:    req.ProfileImage,
	})
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}
