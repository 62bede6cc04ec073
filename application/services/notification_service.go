package services

import (
	"context"

	"chirp/application/ports"
	"chirp/domain/entities"
	"chirp/pkg/errors"

	"go.uber.org/zap"
)

// NotificationView is a notification with the acting user attached
type NotificationView struct {
	*entities.Notification
	From *entities.User `json:"fromUser,omitempty"`
}

// NotificationService records and serves notifications
type NotificationService struct {
	notifications ports.NotificationRepository
	users         ports.UserRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifications ports.NotificationRepository,
	users ports.UserRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// Emit records one unread notification from actor to recipient
func (s *NotificationService) Emit(ctx context.Context, t entities.NotificationType, fromID, toID string) error {
	n, err := entities.NewNotification(t, fromID, toID)
	if err != nil {
		return err
	}
	return s.notifications.Create(ctx, n)
}

// ListFor returns the recipient's notifications newest-first, then marks
// them all read. Read-on-view: the returned items carry the read state
// they had when fetched.
func (s *NotificationService) ListFor(ctx context.Context, userID string) ([]*NotificationView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}

	list, err := s.notifications.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, list)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}

	return views, nil
}

// ClearFor deletes every notification addressed to the recipient
func (s *NotificationService) ClearFor(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.NewNotFoundError("user")
	}
	return s.notifications.DeleteByRecipient(ctx, userID)
}

func (s *NotificationService) hydrate(ctx context.Context, list []*entities.Notification) ([]*NotificationView, error) {
	ids := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, n := range list {
		if !seen[n.FromID] {
			seen[n.FromID] = true
			ids = append(ids, n.FromID)
		}
	}

	actors := map[string]*entities.User{}
	if len(ids) > 0 {
		var err error
		actors, err = s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]*NotificationView, 0, len(list))
	for _, n := range list {
		views = append(views, &NotificationView{
			Notification: n,
			From:         actors[n.FromID],
		})
	}
	return views, nil
}
