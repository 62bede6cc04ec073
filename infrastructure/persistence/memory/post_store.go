package memory

import (
	"context"
	"sort"
	"sync"

	"chirp/application/ports"
	"chirp/domain/entities"
	pkgerrors "chirp/pkg/errors"
)

// PostStore implements ports.PostRepository in memory
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*entities.Post
}

// NewPostStore creates an empty post store
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]*entities.Post)}
}

var _ ports.PostRepository = (*PostStore)(nil)

func clonePost(p *entities.Post) *entities.Post {
	c := *p
	c.Likes = append([]string(nil), p.Likes...)
	c.Comments = append([]entities.Comment(nil), p.Comments...)
	return &c
}

// Create inserts a post
func (s *PostStore) Create(ctx context.Context, post *entities.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

// FindByID returns the post with the given ID, or nil
func (s *PostStore) FindByID(ctx context.Context, id string) (*entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

// Delete removes a post
func (s *PostStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// ListAll returns every post newest-first
func (s *PostStore) ListAll(ctx context.Context) ([]*entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*entities.Post) bool { return true }), nil
}

// ListByUser returns a user's posts newest-first
func (s *PostStore) ListByUser(ctx context.Context, userID string) ([]*entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p *entities.Post) bool { return p.UserID == userID }), nil
}

// ListByUsers returns the posts of all given users newest-first
func (s *PostStore) ListByUsers(ctx context.Context, userIDs []string) ([]*entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		members[id] = true
	}
	return s.collect(func(p *entities.Post) bool { return members[p.UserID] }), nil
}

// ListByIDs returns the posts with the given IDs
func (s *PostStore) ListByIDs(ctx context.Context, ids []string) ([]*entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

// AddLike adds userID to the post's Likes set if absent
func (s *PostStore) AddLike(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *entities.Post) {
		p.Likes = addMember(p.Likes, userID)
	})
}

// RemoveLike removes userID from the post's Likes set if present
func (s *PostStore) RemoveLike(ctx context.Context, postID, userID string) error {
	return s.mutate(postID, func(p *entities.Post) {
		p.Likes = removeMember(p.Likes, userID)
	})
}

// AppendComment appends a comment to the post's comment sequence
func (s *PostStore) AppendComment(ctx context.Context, postID string, comment entities.Comment) error {
	return s.mutate(postID, func(p *entities.Post) {
		p.Comments = append(p.Comments, comment)
	})
}

func (s *PostStore) mutate(postID string, fn func(*entities.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return pkgerrors.NewNotFoundError("post")
	}
	fn(p)
	return nil
}

func (s *PostStore) collect(match func(*entities.Post) bool) []*entities.Post {
	out := make([]*entities.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if match(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
