package memory

import (
	"context"
	"sort"
	"sync"

	"chirp/application/ports"
	"chirp/domain/entities"
)

// NotificationStore implements ports.NotificationRepository in memory
type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[string][]*entities.Notification // keyed by recipient
}

// NewNotificationStore creates an empty notification store
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: make(map[string][]*entities.Notification)}
}

var _ ports.NotificationRepository = (*NotificationStore)(nil)

// Create inserts one notification
func (s *NotificationStore) Create(ctx context.Context, n *entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.notifications[n.ToID] = append(s.notifications[n.ToID], &c)
	return nil
}

// ListByRecipient returns a recipient's notifications newest-first
func (s *NotificationStore) ListByRecipient(ctx context.Context, userID string) ([]*entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notifications[userID]
	out := make([]*entities.Notification, 0, len(list))
	for _, n := range list {
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MarkAllRead flips every notification addressed to the recipient to read
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications[userID] {
		n.Read = true
	}
	return nil
}

// DeleteByRecipient removes every notification addressed to the recipient
func (s *NotificationStore) DeleteByRecipient(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifications, userID)
	return nil
}
