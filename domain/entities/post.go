package entities

import (
	"time"

	pkgerrors "chirp/pkg/errors"

	"github.com/google/uuid"
)

// Comment is one entry in a post's ordered comment sequence
type Comment struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a user-authored post. Likes is a denormalized membership set
// mirrored by the liking users' LikedPosts sets.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPost creates a post. A post must carry text or an image.
func NewPost(userID, text, image string) (*Post, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if text == "" && image == "" {
		return nil, pkgerrors.NewValidationError("post must have image or text")
	}

	return &Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewComment creates a comment for the given author
func NewComment(userID, text string) (Comment, error) {
	if text == "" {
		return Comment{}, pkgerrors.NewValidationError("please provide text for a comment")
	}
	return Comment{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsOwnedBy reports whether the post belongs to the given user
func (p *Post) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}

// IsLikedBy reports whether the given user has liked the post
func (p *Post) IsLikedBy(userID string) bool {
	return contains(p.Likes, userID)
}
