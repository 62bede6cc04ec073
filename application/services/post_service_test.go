package services_test

import (
	"context"
	"testing"

	"chirp/application/services"
	"chirp/domain/entities"
	"chirp/infrastructure/persistence/memory"
	"chirp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type postServiceEnv struct {
	users         *memory.UserStore
	posts         *memory.PostStore
	notifications *memory.NotificationStore
	media         *memory.MediaStore
	publisher     *memory.Publisher
	svc           *services.PostService
}

func newPostServiceEnv() *postServiceEnv {
	users := memory.NewUserStore()
	posts := memory.NewPostStore()
	notifications := memory.NewNotificationStore()
	media := memory.NewMediaStore()
	publisher := memory.NewPublisher()
	logger := zap.NewNop()
	notifySvc := services.NewNotificationService(notifications, users, logger)
	return &postServiceEnv{
		users:         users,
		posts:         posts,
		notifications: notifications,
		media:         media,
		publisher:     publisher,
		svc:           services.NewPostService(posts, users, media, notifySvc, publisher, logger),
	}
}

func TestPostService_Create_TextOnly(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	post, err := env.svc.Create(ctx, ada.ID, "hello world", "")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	assert.Empty(t, post.Image)

	stored, err := env.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestPostService_Create_WithImage(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	post, err := env.svc.Create(ctx, ada.ID, "", "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	require.NotEmpty(t, post.Image)
	assert.True(t, env.media.Has(post.Image))
}

func TestPostService_Create_Empty(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.Create(ctx, ada.ID, "", "")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "post must have image or text", appErr.Message)
}

func TestPostService_Create_UnknownUser(t *testing.T) {
	env := newPostServiceEnv()

	_, err := env.svc.Create(context.Background(), "missing-id", "hello", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	post, err := env.svc.Create(ctx, ada.ID, "", "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, ada.ID, post.ID))

	stored, err := env.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, 0, env.media.Len(), "deleting the post destroys its image")
}

func TestPostService_Delete_NotOwner(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)

	err = env.svc.Delete(ctx, grace.ID, post.ID)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "not authorized to delete this post", appErr.Message)
}

func TestPostService_LikeOrUnlike_Toggle(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)

	// Like
	result, err := env.svc.LikeOrUnlike(ctx, grace.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)

	liked, _ := env.posts.FindByID(ctx, post.ID)
	graceNow, _ := env.users.FindByID(ctx, grace.ID)
	assert.True(t, liked.IsLikedBy(grace.ID))
	assert.True(t, graceNow.HasLiked(post.ID))

	// The post owner got notified
	list, _ := env.notifications.ListByRecipient(ctx, ada.ID)
	require.Len(t, list, 1)
	assert.Equal(t, entities.NotificationLike, list[0].Type)
	assert.Equal(t, grace.ID, list[0].FromID)

	published := env.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "post.liked", published[0].GetEventType())

	// Unlike
	result, err = env.svc.LikeOrUnlike(ctx, grace.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)

	unliked, _ := env.posts.FindByID(ctx, post.ID)
	graceNow, _ = env.users.FindByID(ctx, grace.ID)
	assert.False(t, unliked.IsLikedBy(grace.ID))
	assert.False(t, graceNow.HasLiked(post.ID))

	// No extra notification or event on unlike
	list, _ = env.notifications.ListByRecipient(ctx, ada.ID)
	assert.Len(t, list, 1)
	assert.Len(t, env.publisher.Events(), 1)
}

func TestPostService_LikeOwnPost_Notifies(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)

	_, err = env.svc.LikeOrUnlike(ctx, ada.ID, post.ID)
	require.NoError(t, err)

	// Self-likes are not suppressed
	list, _ := env.notifications.ListByRecipient(ctx, ada.ID)
	assert.Len(t, list, 1)
}

func TestPostService_Comment(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)

	view, err := env.svc.Comment(ctx, grace.ID, post.ID, "nice post")
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "nice post", view.Comments[0].Text)
	assert.Equal(t, grace.ID, view.Comments[0].UserID)
	require.NotNil(t, view.Comments[0].Author)
	assert.Equal(t, "grace", view.Comments[0].Author.Username)
	require.NotNil(t, view.Author)
	assert.Equal(t, "ada", view.Author.Username)
}

func TestPostService_Comment_EmptyText(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)

	_, err = env.svc.Comment(ctx, ada.ID, post.ID, "")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "please provide text for a comment", appErr.Message)
}

func TestPostService_GetFollowing(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")
	linus := mustCreateUser(t, env.users, "linus")

	_, err := env.svc.Create(ctx, grace.ID, "from grace", "")
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, linus.ID, "from linus", "")
	require.NoError(t, err)

	// Not following anyone yet
	feed, err := env.svc.GetFollowing(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)

	require.NoError(t, env.users.AddFollowing(ctx, ada.ID, grace.ID))

	feed, err = env.svc.GetFollowing(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from grace", feed[0].Text)
	require.NotNil(t, feed[0].Author)
	assert.Equal(t, "grace", feed[0].Author.Username)
}

func TestPostService_GetByUsername(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")

	_, err := env.svc.Create(ctx, ada.ID, "first", "")
	require.NoError(t, err)

	posts, err := env.svc.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "first", posts[0].Text)

	_, err = env.svc.GetByUsername(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestPostService_GetLiked(t *testing.T) {
	ctx := context.Background()
	env := newPostServiceEnv()
	ada := mustCreateUser(t, env.users, "ada")
	grace := mustCreateUser(t, env.users, "grace")

	post, err := env.svc.Create(ctx, ada.ID, "hello", "")
	require.NoError(t, err)
	_, err = env.svc.LikeOrUnlike(ctx, grace.ID, post.ID)
	require.NoError(t, err)

	liked, err := env.svc.GetLiked(ctx, grace.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, post.ID, liked[0].ID)
}

func TestPostService_GetAll_Empty(t *testing.T) {
	env := newPostServiceEnv()

	posts, err := env.svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}
