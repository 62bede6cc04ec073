package entities

import (
	"time"

	pkgerrors "chirp/pkg/errors"

	"github.com/google/uuid"
)

// NotificationType is the kind of event a notification records
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification records an actor's action addressed to a recipient.
// Created unread; flipped to read in bulk when the recipient lists them;
// deleted only by the recipient's explicit bulk clear.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	FromID    string           `json:"from"`
	ToID      string           `json:"to"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification creates an unread notification
func NewNotification(t NotificationType, fromID, toID string) (*Notification, error) {
	if t != NotificationFollow && t != NotificationLike {
		return nil, pkgerrors.NewValidationError("unknown notification type")
	}
	if fromID == "" || toID == "" {
		return nil, pkgerrors.NewValidationError("notification requires from and to")
	}
	return &Notification{
		ID:        uuid.New().String(),
		Type:      t,
		FromID:    fromID,
		ToID:      toID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}, nil
}
