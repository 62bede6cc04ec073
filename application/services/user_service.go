package services

import (
	"context"
	"time"

	"chirp/application/ports"
	"chirp/domain/entities"
	"chirp/domain/events"
	"chirp/pkg/auth"
	"chirp/pkg/errors"

	"go.uber.org/zap"
)

const (
	// suggestionSampleSize is how many candidates are drawn from the store
	suggestionSampleSize = 10
	// maxSuggestions caps the suggestion list returned to the client
	maxSuggestions = 4
)

// FollowResult describes the outcome of a follow toggle
type FollowResult struct {
	Followed bool
	Target   *entities.User
}

// UpdateProfileInput carries the optional profile update fields.
// ProfileImage is raw image data (data URI or bare base64).
type UpdateProfileInput struct {
	Username        string
	Email           string
	CurrentPassword string
	NewPassword     string
	ProfileImage    string
}

// UserService handles profiles and the follower graph
type UserService struct {
	users         ports.UserRepository
	media         ports.MediaStore
	notifications *NotificationService
	events        ports.EventPublisher
	logger        *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users ports.UserRepository,
	media ports.MediaStore,
	notifications *NotificationService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:         users,
		media:         media,
		notifications: notifications,
		events:        publisher,
		logger:        logger,
	}
}

// GetProfile returns a user's public profile by username
func (s *UserService) GetProfile(ctx context.Context, username string) (*entities.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}
	return user, nil
}

// GetSuggested samples users the actor does not yet follow, capped at four
func (s *UserService) GetSuggested(ctx context.Context, actorID string) ([]*entities.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, errors.NewNotFoundError("user")
	}

	sample, err := s.users.Sample(ctx, actorID, suggestionSampleSize)
	if err != nil {
		return nil, err
	}

	suggested := make([]*entities.User, 0, maxSuggestions)
	for _, candidate := range sample {
		if actor.IsFollowing(candidate.ID) {
			continue
		}
		suggested = append(suggested, candidate)
		if len(suggested) == maxSuggestions {
			break
		}
	}
	return suggested, nil
}

// FollowOrUnfollow toggles the follow relation from actor to target.
// Both sides of the denormalized pair are updated with atomic set
// mutations; a follow transition emits a notification and a domain event.
func (s *UserService) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (*FollowResult, error) {
	if actorID == targetID {
		return nil, errors.NewValidationError("you cannot follow yourself")
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if target == nil || actor == nil {
		return nil, errors.NewNotFoundError("user")
	}

	if actor.IsFollowing(targetID) {
		if err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
			return nil, err
		}
		if err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		return &FollowResult{Followed: false, Target: target}, nil
	}

	if err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
		return nil, err
	}
	if err := s.users.AddFollowing(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	if err := s.notifications.Emit(ctx, entities.NotificationFollow, actorID, targetID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewUserFollowed(actorID, targetID))

	return &FollowResult{Followed: true, Target: target}, nil
}

// UpdateProfile applies the provided profile changes to the actor
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, in UpdateProfileInput) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, errors.NewValidationError("please provide current password and new password")
	}
	if in.CurrentPassword != "" {
		if !auth.CheckPassword(in.CurrentPassword, user.PasswordHash) {
			return nil, errors.NewUnauthorizedError("incorrect password")
		}
		if len(in.NewPassword) < minPasswordLength {
			return nil, errors.NewValidationError("new password must be at least 6 characters long")
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, errors.NewInternalError("failed to hash password").WithCause(err)
		}
		user.PasswordHash = hash
	}

	if in.ProfileImage != "" {
		if user.ProfileImage != "" {
			if err := s.media.Destroy(ctx, user.ProfileImage); err != nil {
				return nil, err
			}
		}
		data, contentType, err := decodeImage(in.ProfileImage)
		if err != nil {
			return nil, err
		}
		url, err := s.media.Upload(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = url
	}

	prevUsername, prevEmail := user.Username, user.Email
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user, prevUsername, prevEmail); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) publish(ctx context.Context, event events.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
