package services_test

import (
	"context"
	"testing"

	"chirp/application/services"
	"chirp/domain/entities"
	"chirp/domain/events"
	"chirp/infrastructure/persistence/memory"
	"chirp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userServiceEnv struct {
	users         *memory.UserStore
	notifications *memory.NotificationStore
	media         *memory.MediaStore
	publisher     *memory.Publisher
	svc           *services.UserService
}

func newUserServiceEnv() *userServiceEnv {
	users := memory.NewUserStore()
	notifications := memory.NewNotificationStore()
	media := memory.NewMediaStore()
	publisher := memory.NewPublisher()
	logger := zap.NewNop()
	notifySvc := services.NewNotificationService(notifications, users, logger)
	return &userServiceEnv{
		users:         users,
		notifications: notifications,
		media:         media,
		publisher:     publisher,
		svc:           services.NewUserService(users, media, notifySvc, publisher, logger),
	}
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	mustCreateUser(t, env.users, "ada")

	user, err := env.svc.GetProfile(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = env.svc.GetProfile(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestUserService_FollowOrUnfollow_Toggle(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")

	// First call follows
	result, err := env.svc.FollowOrUnfollow(ctx, ada.ID, grace.ID)
	require.NoError(t, err)
	assert.True(t, result.Followed)
	assert.Equal(t, grace.ID, result.Target.ID)

	adaNow, _ := env.users.FindByID(ctx, ada.ID)
	graceNow, _ := env.users.FindByID(ctx, grace.ID)
	assert.True(t, adaNow.IsFollowing(grace.ID))
	assert.True(t, graceNow.HasFollower(ada.ID))

	// Follow notified the target
	list, err := env.notifications.ListByRecipient(ctx, grace.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.NotificationFollow, list[0].Type)
	assert.Equal(t, ada.ID, list[0].FromID)

	published := env.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "user.followed", published[0].GetEventType())
	followed, ok := published[0].(events.UserFollowed)
	require.True(t, ok)
	assert.Equal(t, ada.ID, followed.FollowerID)

	// Second call unfollows, with no new notification or event
	result, err = env.svc.FollowOrUnfollow(ctx, ada.ID, grace.ID)
	require.NoError(t, err)
	assert.False(t, result.Followed)

	adaNow, _ = env.users.FindByID(ctx, ada.ID)
	graceNow, _ = env.users.FindByID(ctx, grace.ID)
	assert.False(t, adaNow.IsFollowing(grace.ID))
	assert.False(t, graceNow.HasFollower(ada.ID))

	list, _ = env.notifications.ListByRecipient(ctx, grace.ID)
	assert.Len(t, list, 1)
	assert.Len(t, env.publisher.Events(), 1)
}

func TestUserService_FollowOrUnfollow_Self(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.FollowOrUnfollow(ctx, ada.ID, ada.ID)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "you cannot follow yourself", appErr.Message)
}

func TestUserService_FollowOrUnfollow_UnknownTarget(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.FollowOrUnfollow(ctx, ada.ID, "missing-id")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestUserService_GetSuggested(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	followed := mustCreateUser(t, env.users, "followed")
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		mustCreateUser(t, env.users, name)
	}

	_, err := env.svc.FollowOrUnfollow(ctx, ada.ID, followed.ID)
	require.NoError(t, err)

	suggested, err := env.svc.GetSuggested(ctx, ada.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(suggested), 4)
	for _, u := range suggested {
		assert.NotEqual(t, ada.ID, u.ID, "must not suggest the actor")
		assert.NotEqual(t, followed.ID, u.ID, "must not suggest already-followed users")
	}
}

func TestUserService_UpdateProfile_PasswordPairing(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		NewPassword: "new-password",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "please provide current password and new password", appErr.Message)

	_, err = env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		CurrentPassword: "hunter22",
	})
	require.Error(t, err)
}

func TestUserService_UpdateProfile_WrongCurrentPassword(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "incorrect password", appErr.Message)
}

func TestUserService_UpdateProfile_ShortNewPassword(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		CurrentPassword: "hunter22",
		NewPassword:     "12345",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "new password must be at least 6 characters long", appErr.Message)
}

func TestUserService_UpdateProfile_Fields(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	updated, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		Username: "ada2",
		Email:    "ada2@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada2", updated.Username)
	assert.Equal(t, "ada2@example.com", updated.Email)

	stored, _ := env.users.FindByID(ctx, ada.ID)
	assert.Equal(t, "ada2", stored.Username)
}

func TestUserService_UpdateProfile_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	mustCreateUser(t, env.users, "grace")

	_, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		Username: "grace",
	})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "username is already taken", appErr.Message)
}

func TestUserService_UpdateProfile_Image(t *testing.T) {
	ctx := context.Background()
	env := newUserServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	updated, err := env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		ProfileImage: "data:image/png;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	require.NotEmpty(t, updated.ProfileImage)
	assert.True(t, env.media.Has(updated.ProfileImage))

	// Replacing the image destroys the previous object
	first := updated.ProfileImage
	updated, err = env.svc.UpdateProfile(ctx, ada.ID, services.UpdateProfileInput{
		ProfileImage: "data:image/jpeg;base64,d29ybGQ=",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first, updated.ProfileImage)
	assert.False(t, env.media.Has(first))
	assert.Equal(t, 1, env.media.Len())
}
