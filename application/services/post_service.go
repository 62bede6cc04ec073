package services

import (
	"context"

	"chirp/application/ports"
	"chirp/domain/entities"
	"chirp/domain/events"
	"chirp/pkg/errors"

	"go.uber.org/zap"
)

// CommentView is a comment with its author attached
type CommentView struct {
	UserID    string         `json:"userId"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"createdAt"`
	Author    *entities.User `json:"author,omitempty"`
}

// PostView is a post hydrated with its author and comment authors
type PostView struct {
	*entities.Post
	Author   *entities.User `json:"author,omitempty"`
	Comments []CommentView  `json:"comments"`
}

// LikeResult describes the outcome of a like toggle
type LikeResult struct {
	Liked bool
	Post  *entities.Post
}

// PostService handles posts, comments and the like relation
type PostService struct {
	posts         ports.PostRepository
	users         ports.UserRepository
	media         ports.MediaStore
	notifications *NotificationService
	events        ports.EventPublisher
	logger        *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(
	posts ports.PostRepository,
	users ports.UserRepository,
	media ports.MediaStore,
	notifications *NotificationService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:         posts,
		users:         users,
		media:         media,
		notifications: notifications,
		events:        publisher,
		logger:        logger,
	}
}

// Create stores a new post. Image data, when present, is uploaded to the
// media store and only the public URL is persisted.
func (s *PostService) Create(ctx context.Context, actorID, text, image string) (*entities.Post, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, errors.NewNotFoundError("user")
	}

	if text == "" && image == "" {
		return nil, errors.NewValidationError("post must have image or text")
	}

	imageURL := ""
	if image != "" {
		data, contentType, err := decodeImage(image)
		if err != nil {
			return nil, err
		}
		imageURL, err = s.media.Upload(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
	}

	post, err := entities.NewPost(actorID, text, imageURL)
	if err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		zap.String("postID", post.ID),
		zap.String("userID", actorID),
	)

	return post, nil
}

// Delete removes a post owned by the actor, destroying its image if any
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.NewNotFoundError("post")
	}
	if !post.IsOwnedBy(actorID) {
		return errors.NewValidationError("not authorized to delete this post")
	}

	if post.Image != "" {
		if err := s.media.Destroy(ctx, post.Image); err != nil {
			return err
		}
	}

	return s.posts.Delete(ctx, postID)
}

// LikeOrUnlike toggles the actor's like on a post. The post's Likes set
// and the actor's LikedPosts set are mutated atomically on both sides; a
// like transition notifies the post owner, self-likes included.
func (s *PostService) LikeOrUnlike(ctx context.Context, actorID, postID string) (*LikeResult, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.NewNotFoundError("post")
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, errors.NewNotFoundError("user")
	}

	if post.IsLikedBy(actorID) {
		if err := s.posts.RemoveLike(ctx, postID, actorID); err != nil {
			return nil, err
		}
		if err := s.users.RemoveLikedPost(ctx, actorID, postID); err != nil {
			return nil, err
		}
		return &LikeResult{Liked: false, Post: post}, nil
	}

	if err := s.posts.AddLike(ctx, postID, actorID); err != nil {
		return nil, err
	}
	if err := s.users.AddLikedPost(ctx, actorID, postID); err != nil {
		return nil, err
	}

	if err := s.notifications.Emit(ctx, entities.NotificationLike, actorID, post.UserID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewPostLiked(postID, actorID, post.UserID))

	return &LikeResult{Liked: true, Post: post}, nil
}

// Comment appends a comment to a post and returns the hydrated post
func (s *PostService) Comment(ctx context.Context, actorID, postID, text string) (*PostView, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.NewNotFoundError("post")
	}

	comment, err := entities.NewComment(actorID, text)
	if err != nil {
		return nil, err
	}

	if err := s.posts.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	updated, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewNotFoundError("post")
	}

	views, err := s.hydrate(ctx, []*entities.Post{updated})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// GetAll returns every post newest-first
func (s *PostService) GetAll(ctx context.Context) ([]*PostView, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

// GetFollowing returns the posts of the users the actor follows
func (s *PostService) GetFollowing(ctx context.Context, actorID string) ([]*PostView, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, errors.NewNotFoundError("user")
	}
	if len(actor.Following) == 0 {
		return []*PostView{}, nil
	}
	posts, err := s.posts.ListByUsers(ctx, actor.Following)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

// GetByUsername returns a user's posts newest-first
func (s *PostService) GetByUsername(ctx context.Context, username string) ([]*PostView, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}
	posts, err := s.posts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

// GetLiked returns the posts a user has liked
func (s *PostService) GetLiked(ctx context.Context, userID string) ([]*PostView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user")
	}
	if len(user.LikedPosts) == 0 {
		return []*PostView{}, nil
	}
	posts, err := s.posts.ListByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

// hydrate attaches authors to posts and their comments
func (s *PostService) hydrate(ctx context.Context, posts []*entities.Post) ([]*PostView, error) {
	ids := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	collect := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		collect(p.UserID)
		for _, c := range p.Comments {
			collect(c.UserID)
		}
	}

	authors := map[string]*entities.User{}
	if len(ids) > 0 {
		var err error
		authors, err = s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		comments := make([]CommentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, CommentView{
				UserID:    c.UserID,
				Text:      c.Text,
				CreatedAt: c.CreatedAt.UTC().Format(timeLayout),
				Author:    authors[c.UserID],
			})
		}
		views = append(views, &PostView{
			Post:     p,
			Author:   authors[p.UserID],
			Comments: comments,
		})
	}
	return views, nil
}

func (s *PostService) publish(ctx context.Context, event events.DomainEvent) {
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
