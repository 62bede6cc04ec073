package entities

import (
	"time"

	pkgerrors "chirp/pkg/errors"

	"github.com/google/uuid"
)

// User is a registered identity. Followers, Following and LikedPosts are
// denormalized membership sets kept consistent by the store's atomic
// set mutations; PasswordHash never serializes.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	LikedPosts   []string  `json:"likedPosts"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser creates a new user with a fresh identifier
func NewUser(username, email, passwordHash string) (*User, error) {
	if username == "" {
		return nil, pkgerrors.NewValidationError("username is required")
	}
	if email == "" {
		return nil, pkgerrors.NewValidationError("email is required")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsFollowing reports whether the user follows the given identity
func (u *User) IsFollowing(userID string) bool {
	return contains(u.Following, userID)
}

// HasFollower reports whether the given identity follows the user
func (u *User) HasFollower(userID string) bool {
	return contains(u.Followers, userID)
}

// HasLiked reports whether the user has liked the given post
func (u *User) HasLiked(postID string) bool {
	return contains(u.LikedPosts, postID)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
