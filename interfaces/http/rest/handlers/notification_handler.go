package handlers

import (
	"net/http"

	"chirp/application/services"
	"chirp/pkg/auth"
	"chirp/pkg/common"

	"go.uber.org/zap"
)

// NotificationHandler handles the notification inbox
type NotificationHandler struct {
	service *services.NotificationService
	logger  *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /api/notifications. Viewing the inbox marks every
// notification read; the response still shows the pre-view read state.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	notifications, err := h.service.ListFor(r.Context(), actor.ID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, notifications)
}

// Clear handles DELETE /api/notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	if err := h.service.ClearFor(r.Context(), actor.ID); err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondMessage(w, "notifications deleted")
}
