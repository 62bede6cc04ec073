// Package ports defines the interfaces the application layer depends on.
// Infrastructure provides the implementations.
package ports

import (
	"context"

	"chirp/domain/entities"
	"chirp/domain/events"
)

// UserRepository provides access to the user collection.
//
// Find methods return (nil, nil) when no user matches. Create and Update
// enforce username/email uniqueness with constrained inserts; a duplicate
// surfaces as a validation error. The Add*/Remove* methods are atomic
// add-if-absent / remove-if-present set mutations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, user *entities.User, prevUsername, prevEmail string) error

	// Sample returns up to n users excluding the given one, in random order
	Sample(ctx context.Context, excludeID string, n int) ([]*entities.User, error)

	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error
	AddFollowing(ctx context.Context, userID, followingID string) error
	RemoveFollowing(ctx context.Context, userID, followingID string) error
	AddLikedPost(ctx context.Context, userID, postID string) error
	RemoveLikedPost(ctx context.Context, userID, postID string) error
}

// PostRepository provides access to the post collection
type PostRepository interface {
	Create(ctx context.Context, post *entities.Post) error
	FindByID(ctx context.Context, id string) (*entities.Post, error)
	Delete(ctx context.Context, id string) error

	// ListAll returns every post newest-first
	ListAll(ctx context.Context) ([]*entities.Post, error)
	// ListByUser returns a user's posts newest-first
	ListByUser(ctx context.Context, userID string) ([]*entities.Post, error)
	// ListByUsers returns the posts of all given users newest-first
	ListByUsers(ctx context.Context, userIDs []string) ([]*entities.Post, error)
	// ListByIDs returns the posts with the given IDs, order unspecified
	ListByIDs(ctx context.Context, ids []string) ([]*entities.Post, error)

	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	AppendComment(ctx context.Context, postID string, comment entities.Comment) error
}

// NotificationRepository provides access to the notification collection
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	// ListByRecipient returns a recipient's notifications newest-first
	ListByRecipient(ctx context.Context, userID string) ([]*entities.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteByRecipient(ctx context.Context, userID string) error
}

// MediaStore uploads and destroys hosted images.
// Public URLs end in /<publicId>.<ext>.
type MediaStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Destroy(ctx context.Context, publicURL string) error
}

// EventPublisher publishes domain events to the event bus.
// Publishing is best-effort; callers log and continue on failure.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
