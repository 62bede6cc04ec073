package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"chirp/application/ports"
	"chirp/domain/entities"
	pkgerrors "chirp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entityTypePost = "POST"
	// postFeedPartition keys the global reverse-chronological feed
	postFeedPartition = "POST"
)

// PostRepository implements ports.PostRepository on DynamoDB.
// Likes is a native string set; comments are an ordered list appended to
// in place.
type PostRepository struct {
	client        *dynamodb.Client
	tableName     string
	userPostIndex string // GSI1 - a user's posts by creation time
	feedIndex     string // GSI2 - all posts by creation time
	logger        *zap.Logger
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(client *dynamodb.Client, tableName, userPostIndex, feedIndex string, logger *zap.Logger) ports.PostRepository {
	return &PostRepository{
		client:        client,
		tableName:     tableName,
		userPostIndex: userPostIndex,
		feedIndex:     feedIndex,
		logger:        logger,
	}
}

// postItem represents the DynamoDB item structure for a post
type postItem struct {
	PK         string        `dynamodbav:"PK"`
	SK         string        `dynamodbav:"SK"`
	GSI1PK     string        `dynamodbav:"GSI1PK"`
	GSI1SK     string        `dynamodbav:"GSI1SK"`
	GSI2PK     string        `dynamodbav:"GSI2PK"`
	GSI2SK     string        `dynamodbav:"GSI2SK"`
	EntityType string        `dynamodbav:"EntityType"`
	PostID     string        `dynamodbav:"PostID"`
	UserID     string        `dynamodbav:"UserID"`
	Text       string        `dynamodbav:"Text,omitempty"`
	Image      string        `dynamodbav:"Image,omitempty"`
	Likes      []string      `dynamodbav:"Likes,stringset,omitempty"`
	Comments   []commentItem `dynamodbav:"Comments,omitempty"`
	CreatedAt  string        `dynamodbav:"CreatedAt"`
}

type commentItem struct {
	UserID    string `dynamodbav:"UserID"`
	Text      string `dynamodbav:"Text"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

func postPK(id string) string { return fmt.Sprintf("POST#%s", id) }

func userPostsKey(id string) string { return fmt.Sprintf("USERPOSTS#%s", id) }

func toPostItem(p *entities.Post) postItem {
	createdAt := keyTime(p.CreatedAt)
	comments := make([]commentItem, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentItem{
			UserID:    c.UserID,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return postItem{
		PK:         postPK(p.ID),
		SK:         skMetadata,
		GSI1PK:     userPostsKey(p.UserID),
		GSI1SK:     createdAt,
		GSI2PK:     postFeedPartition,
		GSI2SK:     createdAt,
		EntityType: entityTypePost,
		PostID:     p.ID,
		UserID:     p.UserID,
		Text:       p.Text,
		Image:      p.Image,
		Likes:      p.Likes,
		Comments:   comments,
		CreatedAt:  createdAt,
	}
}

func fromPostItem(item postItem) (*entities.Post, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post CreatedAt: %w", err)
	}
	comments := make([]entities.Comment, 0, len(item.Comments))
	for _, c := range item.Comments {
		at, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse comment CreatedAt: %w", err)
		}
		comments = append(comments, entities.Comment{
			UserID:    c.UserID,
			Text:      c.Text,
			CreatedAt: at,
		})
	}
	return &entities.Post{
		ID:        item.PostID,
		UserID:    item.UserID,
		Text:      item.Text,
		Image:     item.Image,
		Likes:     item.Likes,
		Comments:  comments,
		CreatedAt: createdAt,
	}, nil
}

// Create persists a new post
func (r *PostRepository) Create(ctx context.Context, post *entities.Post) error {
	av, err := attributevalue.MarshalMap(toPostItem(post))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal post", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("create post", err)
	}
	return nil
}

// FindByID returns the post with the given ID, or nil when absent
func (r *PostRepository) FindByID(ctx context.Context, id string) (*entities.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: postPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("find post by id", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var item postItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal post", err)
	}
	return fromPostItem(item)
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: postPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete post", err)
	}
	return nil
}

// ListAll returns every post newest-first via the global feed index
func (r *PostRepository) ListAll(ctx context.Context) ([]*entities.Post, error) {
	return r.queryPosts(ctx, r.feedIndex, "GSI2PK", postFeedPartition)
}

// ListByUser returns a user's posts newest-first
func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Post, error) {
	return r.queryPosts(ctx, r.userPostIndex, "GSI1PK", userPostsKey(userID))
}

// ListByUsers returns the posts of all given users merged newest-first.
// One query per followed user; the store offers no cross-partition sort.
func (r *PostRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*entities.Post, error) {
	var merged []*entities.Post
	for _, id := range userIDs {
		posts, err := r.ListByUser(ctx, id)
		if err != nil {
			return nil, err
		}
		merged = append(merged, posts...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// ListByIDs returns the posts with the given IDs
func (r *PostRepository) ListByIDs(ctx context.Context, ids []string) ([]*entities.Post, error) {
	posts := make([]*entities.Post, 0, len(ids))

	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: postPK(id)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			})
		}

		requested := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}
		for len(requested) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: requested,
			})
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("batch get posts", err)
			}
			for _, raw := range out.Responses[r.tableName] {
				var item postItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, pkgerrors.NewDatabaseError("unmarshal post", err)
				}
				post, err := fromPostItem(item)
				if err != nil {
					return nil, pkgerrors.NewDatabaseError("unmarshal post", err)
				}
				posts = append(posts, post)
			}
			requested = out.UnprocessedKeys
		}
	}
	return posts, nil
}

// AddLike adds userID to the post's Likes set
func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) error {
	return r.mutateLikes(ctx, postID, "ADD", userID)
}

// RemoveLike removes userID from the post's Likes set
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.mutateLikes(ctx, postID, "DELETE", userID)
}

func (r *PostRepository) mutateLikes(ctx context.Context, postID, op, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: postPK(postID)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		UpdateExpression: aws.String(fmt.Sprintf("%s Likes :member", op)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{userID}},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if stderrors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("post")
		}
		return pkgerrors.NewDatabaseError(fmt.Sprintf("%s Likes", op), err)
	}
	return nil
}

// AppendComment appends a comment to the post's ordered comment list
func (r *PostRepository) AppendComment(ctx context.Context, postID string, comment entities.Comment) error {
	av, err := attributevalue.MarshalList([]commentItem{{
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339Nano),
	}})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal comment", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: postPK(postID)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		UpdateExpression: aws.String("SET Comments = list_append(if_not_exists(Comments, :empty), :comment)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":comment": &types.AttributeValueMemberL{Value: av},
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if stderrors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("post")
		}
		return pkgerrors.NewDatabaseError("append comment", err)
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, index, keyAttr, keyValue string) ([]*entities.Post, error) {
	var posts []*entities.Post
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String(fmt.Sprintf("%s = :pk", keyAttr)),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: keyValue},
			},
			ScanIndexForward:  aws.Bool(false), // newest first
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query posts", err)
		}
		for _, raw := range out.Items {
			var item postItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal post", err)
			}
			post, err := fromPostItem(item)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal post", err)
			}
			posts = append(posts, post)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return posts, nil
}
