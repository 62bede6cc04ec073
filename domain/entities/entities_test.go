package entities

import (
	"encoding/json"
	"testing"

	"chirp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("ada", "ada@example.com", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = NewUser("", "ada@example.com", "hash")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewUser("ada", "", "hash")
	require.Error(t, err)

	_, err = NewUser("ada", "ada@example.com", "")
	require.Error(t, err)
}

func TestUser_PasswordHashNeverSerializes(t *testing.T) {
	user, err := NewUser("ada", "ada@example.com", "super-secret-hash")
	require.NoError(t, err)

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-hash")
}

func TestUser_Membership(t *testing.T) {
	user := &User{
		Followers:  []string{"f1"},
		Following:  []string{"f2"},
		LikedPosts: []string{"p1"},
	}

	assert.True(t, user.HasFollower("f1"))
	assert.False(t, user.HasFollower("f2"))
	assert.True(t, user.IsFollowing("f2"))
	assert.False(t, user.IsFollowing("f1"))
	assert.True(t, user.HasLiked("p1"))
	assert.False(t, user.HasLiked("p2"))
}

func TestNewPost(t *testing.T) {
	post, err := NewPost("user-1", "hello", "")
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.True(t, post.IsOwnedBy("user-1"))
	assert.False(t, post.IsOwnedBy("user-2"))

	// Image-only posts are valid
	_, err = NewPost("user-1", "", "https://example.com/img.png")
	require.NoError(t, err)

	_, err = NewPost("user-1", "", "")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "post must have image or text", appErr.Message)

	_, err = NewPost("", "hello", "")
	require.Error(t, err)
}

func TestNewComment(t *testing.T) {
	comment, err := NewComment("user-1", "nice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", comment.UserID)
	assert.False(t, comment.CreatedAt.IsZero())

	_, err = NewComment("user-1", "")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "please provide text for a comment", appErr.Message)
}

func TestNewNotification(t *testing.T) {
	n, err := NewNotification(NotificationFollow, "from-1", "to-1")
	require.NoError(t, err)
	assert.False(t, n.Read)
	assert.Equal(t, NotificationFollow, n.Type)

	_, err = NewNotification(NotificationType("poke"), "from-1", "to-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewNotification(NotificationLike, "", "to-1")
	require.Error(t, err)
}
