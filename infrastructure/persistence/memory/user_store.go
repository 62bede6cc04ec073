// Package memory implements the repository ports in process memory.
// It backs tests and local runs that have no DynamoDB to talk to, with
// the same uniqueness and set-mutation semantics as the real store.
package memory

import (
	"context"
	"math/rand"
	"sync"

	"chirp/application/ports"
	"chirp/domain/entities"
	pkgerrors "chirp/pkg/errors"
)

// UserStore implements ports.UserRepository in memory
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*entities.User
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*entities.User)}
}

var _ ports.UserRepository = (*UserStore)(nil)

func cloneUser(u *entities.User) *entities.User {
	c := *u
	c.Followers = append([]string(nil), u.Followers...)
	c.Following = append([]string(nil), u.Following...)
	c.LikedPosts = append([]string(nil), u.LikedPosts...)
	return &c
}

// FindByID returns the user with the given ID, or nil
func (s *UserStore) FindByID(ctx context.Context, id string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// FindByIDs returns the users with the given IDs, keyed by ID
func (s *UserStore) FindByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]*entities.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			found[id] = cloneUser(u)
		}
	}
	return found, nil
}

// FindByUsername returns the user with the given username, or nil
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// FindByEmail returns the user with the given email, or nil
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// Create inserts a user, enforcing username and email uniqueness
func (s *UserStore) Create(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return pkgerrors.NewValidationError("username is already taken")
		}
		if u.Email == user.Email {
			return pkgerrors.NewValidationError("email is already taken")
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// Update stores a modified user, re-checking uniqueness on changed fields
func (s *UserStore) Update(ctx context.Context, user *entities.User, prevUsername, prevEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return pkgerrors.NewNotFoundError("user")
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if user.Username != prevUsername && u.Username == user.Username {
			return pkgerrors.NewValidationError("username is already taken")
		}
		if user.Email != prevEmail && u.Email == user.Email {
			return pkgerrors.NewValidationError("email is already taken")
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// Sample returns up to n users excluding the given one, in random order
func (s *UserStore) Sample(ctx context.Context, excludeID string, n int) ([]*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := make([]*entities.User, 0, len(s.users))
	for id, u := range s.users {
		if id == excludeID {
			continue
		}
		candidates = append(candidates, cloneUser(u))
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// AddFollower adds followerID to the user's Followers set if absent
func (s *UserStore) AddFollower(ctx context.Context, userID, followerID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.Followers = addMember(u.Followers, followerID)
	})
}

// RemoveFollower removes followerID from the user's Followers set if present
func (s *UserStore) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.Followers = removeMember(u.Followers, followerID)
	})
}

// AddFollowing adds followingID to the user's Following set if absent
func (s *UserStore) AddFollowing(ctx context.Context, userID, followingID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.Following = addMember(u.Following, followingID)
	})
}

// RemoveFollowing removes followingID from the user's Following set if present
func (s *UserStore) RemoveFollowing(ctx context.Context, userID, followingID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.Following = removeMember(u.Following, followingID)
	})
}

// AddLikedPost adds postID to the user's LikedPosts set if absent
func (s *UserStore) AddLikedPost(ctx context.Context, userID, postID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.LikedPosts = addMember(u.LikedPosts, postID)
	})
}

// RemoveLikedPost removes postID from the user's LikedPosts set if present
func (s *UserStore) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	return s.mutate(userID, func(u *entities.User) {
		u.LikedPosts = removeMember(u.LikedPosts, postID)
	})
}

func (s *UserStore) mutate(userID string, fn func(*entities.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return pkgerrors.NewNotFoundError("user")
	}
	fn(u)
	return nil
}

func addMember(set []string, v string) []string {
	for _, m := range set {
		if m == v {
			return set
		}
	}
	return append(set, v)
}

func removeMember(set []string, v string) []string {
	out := set[:0]
	for _, m := range set {
		if m != v {
			out = append(out, m)
		}
	}
	return out
}
