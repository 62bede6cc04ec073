// Package traced decorates repositories with OpenTelemetry spans.
package traced

import (
	"context"

	"chirp/application/ports"
	"chirp/domain/entities"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WrapPostRepository wraps a post repository with tracing
func WrapPostRepository(inner ports.PostRepository, tracer trace.Tracer) ports.PostRepository {
	return &tracedPostRepository{inner: inner, tracer: tracer}
}

type tracedPostRepository struct {
	inner  ports.PostRepository
	tracer trace.Tracer
}

func (r *tracedPostRepository) Create(ctx context.Context, post *entities.Post) error {
	ctx, span := r.tracer.Start(ctx, "repository.CreatePost",
		trace.WithAttributes(
			attribute.String("post.id", post.ID),
			attribute.String("user.id", post.UserID),
		),
	)
	defer span.End()

	err := r.inner.Create(ctx, post)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedPostRepository) FindByID(ctx context.Context, id string) (*entities.Post, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindPostByID",
		trace.WithAttributes(attribute.String("post.id", id)),
	)
	defer span.End()

	post, err := r.inner.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return post, err
}

func (r *tracedPostRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "repository.DeletePost",
		trace.WithAttributes(attribute.String("post.id", id)),
	)
	defer span.End()

	err := r.inner.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedPostRepository) ListAll(ctx context.Context) ([]*entities.Post, error) {
	ctx, span := r.tracer.Start(ctx, "repository.ListAllPosts")
	defer span.End()

	posts, err := r.inner.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return posts, err
}

func (r *tracedPostRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Post, error) {
	ctx, span := r.tracer.Start(ctx, "repository.ListPostsByUser",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	posts, err := r.inner.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
	}
	return posts, err
}

func (r *tracedPostRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*entities.Post, error) {
	ctx, span := r.tracer.Start(ctx, "repository.ListPostsByUsers",
		trace.WithAttributes(attribute.Int("user.count", len(userIDs))),
	)
	defer span.End()

	posts, err := r.inner.ListByUsers(ctx, userIDs)
	if err != nil {
		span.RecordError(err)
	}
	return posts, err
}

func (r *tracedPostRepository) ListByIDs(ctx context.Context, ids []string) ([]*entities.Post, error) {
	ctx, span := r.tracer.Start(ctx, "repository.ListPostsByIDs",
		trace.WithAttributes(attribute.Int("post.count", len(ids))),
	)
	defer span.End()

	posts, err := r.inner.ListByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
	}
	return posts, err
}

func (r *tracedPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	ctx, span := r.tracer.Start(ctx, "repository.AddLike",
		trace.WithAttributes(
			attribute.String("post.id", postID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	err := r.inner.AddLike(ctx, postID, userID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	ctx, span := r.tracer.Start(ctx, "repository.RemoveLike",
		trace.WithAttributes(
			attribute.String("post.id", postID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	err := r.inner.RemoveLike(ctx, postID, userID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *tracedPostRepository) AppendComment(ctx context.Context, postID string, comment entities.Comment) error {
	ctx, span := r.tracer.Start(ctx, "repository.AppendComment",
		trace.WithAttributes(
			attribute.String("post.id", postID),
			attribute.String("user.id", comment.UserID),
		),
	)
	defer span.End()

	err := r.inner.AppendComment(ctx, postID, comment)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
