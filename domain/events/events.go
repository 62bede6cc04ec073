// Package events defines domain events published after social-graph
// state transitions.
package events

import "time"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// UserFollowed is raised on a follow transition (not on unfollow)
type UserFollowed struct {
	BaseEvent
	FollowerID string `json:"follower_id"`
	FollowedID string `json:"followed_id"`
}

// NewUserFollowed creates a UserFollowed event
func NewUserFollowed(followerID, followedID string) UserFollowed {
	return UserFollowed{
		BaseEvent: BaseEvent{
			AggregateID: followedID,
			EventType:   "user.followed",
			Timestamp:   time.Now().UTC(),
		},
		FollowerID: followerID,
		FollowedID: followedID,
	}
}

// PostLiked is raised on a like transition (not on unlike)
type PostLiked struct {
	BaseEvent
	PostID  string `json:"post_id"`
	LikerID string `json:"liker_id"`
	OwnerID string `json:"owner_id"`
}

// NewPostLiked creates a PostLiked event
func NewPostLiked(postID, likerID, ownerID string) PostLiked {
	return PostLiked{
		BaseEvent: BaseEvent{
			AggregateID: postID,
			EventType:   "post.liked",
			Timestamp:   time.Now().UTC(),
		},
		PostID:  postID,
		LikerID: likerID,
		OwnerID: ownerID,
	}
}
