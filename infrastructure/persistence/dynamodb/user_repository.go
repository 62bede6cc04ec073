package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"time"

	"chirp/application/ports"
	"chirp/domain/entities"
	pkgerrors "chirp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	skMetadata     = "METADATA"
	skMarker       = "MARKER"
	entityTypeUser = "USER"

	// sampleScanLimit bounds the scan page the suggestion sample draws from
	sampleScanLimit = 50

	// keyTimeLayout is RFC3339 with fixed-width nanoseconds. RFC3339Nano
	// trims trailing fractional zeros, so lexicographic key order would
	// diverge from chronological order.
	keyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// keyTime formats a timestamp for use in a key position
func keyTime(t time.Time) string {
	return t.UTC().Format(keyTimeLayout)
}

// UserRepository implements ports.UserRepository on DynamoDB.
// Followers, Following and LikedPosts live as native string sets, so the
// membership mutations are single atomic ADD/DELETE updates.
type UserRepository struct {
	client        *dynamodb.Client
	tableName     string
	usernameIndex string
	emailIndex    string
	logger        *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName, usernameIndex, emailIndex string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:        client,
		tableName:     tableName,
		usernameIndex: usernameIndex,
		emailIndex:    emailIndex,
		logger:        logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	GSI1PK       string   `dynamodbav:"GSI1PK"`
	GSI1SK       string   `dynamodbav:"GSI1SK"`
	GSI2PK       string   `dynamodbav:"GSI2PK"`
	GSI2SK       string   `dynamodbav:"GSI2SK"`
	EntityType   string   `dynamodbav:"EntityType"`
	UserID       string   `dynamodbav:"UserID"`
	Username     string   `dynamodbav:"Username"`
	Email        string   `dynamodbav:"Email"`
	PasswordHash string   `dynamodbav:"PasswordHash"`
	ProfileImage string   `dynamodbav:"ProfileImage,omitempty"`
	Followers    []string `dynamodbav:"Followers,stringset,omitempty"`
	Following    []string `dynamodbav:"Following,stringset,omitempty"`
	LikedPosts   []string `dynamodbav:"LikedPosts,stringset,omitempty"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
	UpdatedAt    string   `dynamodbav:"UpdatedAt"`
}

func userPK(id string) string { return fmt.Sprintf("USER#%s", id) }

func usernameKey(username string) string { return fmt.Sprintf("USERNAME#%s", username) }

func emailKey(email string) string { return fmt.Sprintf("EMAIL#%s", email) }
func usernameMarkerPK(username string) string {
	return fmt.Sprintf("UNIQUE#USERNAME#%s", username)
}
func emailMarkerPK(email string) string { return fmt.Sprintf("UNIQUE#EMAIL#%s", email) }

func toUserItem(u *entities.User) userItem {
	return userItem{
		PK:           userPK(u.ID),
		SK:           skMetadata,
		GSI1PK:       usernameKey(u.Username),
		GSI1SK:       skMetadata,
		GSI2PK:       emailKey(u.Email),
		GSI2SK:       skMetadata,
		EntityType:   entityTypeUser,
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		ProfileImage: u.ProfileImage,
		Followers:    u.Followers,
		Following:    u.Following,
		LikedPosts:   u.LikedPosts,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromUserItem(item userItem) (*entities.User, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user CreatedAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user UpdatedAt: %w", err)
	}
	return &entities.User{
		ID:           item.UserID,
		Username:     item.Username,
		Email:        item.Email,
		PasswordHash: item.PasswordHash,
		ProfileImage: item.ProfileImage,
		Followers:    item.Followers,
		Following:    item.Following,
		LikedPosts:   item.LikedPosts,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Create persists a new user. The user item and the username/email
// uniqueness markers go in one TransactWriteItems, each guarded by
// attribute_not_exists; a duplicate cancels the whole transaction.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                r.markerItem(usernameMarkerPK(user.Username), user.ID),
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                r.markerItem(emailMarkerPK(user.Email), user.ID),
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
		},
	})
	if err != nil {
		if reason := cancelledAt(err, 1); reason {
			return pkgerrors.NewValidationError("username is already taken")
		}
		if reason := cancelledAt(err, 2); reason {
			return pkgerrors.NewValidationError("email is already taken")
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}
	return nil
}

// Update persists profile changes. When the username or email changed,
// the old marker is released and the new one claimed in the same
// transaction, so uniqueness holds across the rename.
func (r *UserRepository) Update(ctx context.Context, user *entities.User, prevUsername, prevEmail string) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	usernameChanged := user.Username != prevUsername
	emailChanged := user.Email != prevEmail

	if !usernameChanged && !emailChanged {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if err != nil {
			var condErr *types.ConditionalCheckFailedException
			if stderrors.As(err, &condErr) {
				return pkgerrors.NewNotFoundError("user")
			}
			return pkgerrors.NewDatabaseError("update user", err)
		}
		return nil
	}

	items := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(PK)"),
		}},
	}
	usernameMarkerIdx, emailMarkerIdx := -1, -1
	if usernameChanged {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       r.markerKey(usernameMarkerPK(prevUsername)),
		}})
		usernameMarkerIdx = len(items)
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                r.markerItem(usernameMarkerPK(user.Username), user.ID),
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		}})
	}
	if emailChanged {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       r.markerKey(emailMarkerPK(prevEmail)),
		}})
		emailMarkerIdx = len(items)
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                r.markerItem(emailMarkerPK(user.Email), user.ID),
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		}})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if usernameMarkerIdx >= 0 && cancelledAt(err, usernameMarkerIdx) {
			return pkgerrors.NewValidationError("username is already taken")
		}
		if emailMarkerIdx >= 0 && cancelledAt(err, emailMarkerIdx) {
			return pkgerrors.NewValidationError("email is already taken")
		}
		if cancelledAt(err, 0) {
			return pkgerrors.NewNotFoundError("user")
		}
		return pkgerrors.NewDatabaseError("update user", err)
	}
	return nil
}

// FindByID returns the user with the given ID, or nil when absent
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("find user by id", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return fromUserItem(item)
}

// FindByIDs returns the users with the given IDs keyed by ID
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	users := make(map[string]*entities.User, len(ids))

	// BatchGetItem accepts at most 100 keys per call
	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: userPK(id)},
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
				return nil, pkgerrors.NewDatabaseError("batch get users", err)
			}
			for _, raw := range out.Responses[r.tableName] {
				var item userItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
				}
				user, err := fromUserItem(item)
				if err != nil {
					return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
				}
				users[user.ID] = user
			}
			requested = out.UnprocessedKeys
		}
	}
	return users, nil
}

// FindByUsername returns the user with the given username, or nil
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.queryOne(ctx, r.usernameIndex, "GSI1PK", usernameKey(username))
}

// FindByEmail returns the user with the given email, or nil
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.queryOne(ctx, r.emailIndex, "GSI2PK", emailKey(email))
}

func (r *UserRepository) queryOne(ctx context.Context, index, keyAttr, keyValue string) (*entities.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :pk", keyAttr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: keyValue},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query user", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return fromUserItem(item)
}

// Sample scans a page of users excluding the given one and returns up to
// n of them in random order. Approximates the store's random sampling
// aggregation well enough for suggestion feeds.
func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]*entities.User, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypeUser)).
		And(expression.Name("UserID").NotEqual(expression.Value(excludeID)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build sample expression", err)
	}

	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(sampleScanLimit),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("sample users", err)
	}

	users := make([]*entities.User, 0, len(out.Items))
	for _, raw := range out.Items {
		var item userItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
		}
		user, err := fromUserItem(item)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
		}
		users = append(users, user)
	}

	rand.Shuffle(len(users), func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}

// AddFollower adds followerID to the user's Followers set
func (r *UserRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	return r.mutateSet(ctx, userID, "ADD", "Followers", followerID)
}

// RemoveFollower removes followerID from the user's Followers set
func (r *UserRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.mutateSet(ctx, userID, "DELETE", "Followers", followerID)
}

// AddFollowing adds followingID to the user's Following set
func (r *UserRepository) AddFollowing(ctx context.Context, userID, followingID string) error {
	return r.mutateSet(ctx, userID, "ADD", "Following", followingID)
}

// RemoveFollowing removes followingID from the user's Following set
func (r *UserRepository) RemoveFollowing(ctx context.Context, userID, followingID string) error {
	return r.mutateSet(ctx, userID, "DELETE", "Following", followingID)
}

// AddLikedPost adds postID to the user's LikedPosts set
func (r *UserRepository) AddLikedPost(ctx context.Context, userID, postID string) error {
	return r.mutateSet(ctx, userID, "ADD", "LikedPosts", postID)
}

// RemoveLikedPost removes postID from the user's LikedPosts set
func (r *UserRepository) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	return r.mutateSet(ctx, userID, "DELETE", "LikedPosts", postID)
}

// mutateSet applies an atomic string-set ADD or DELETE. Both operations
// are idempotent, so concurrent duplicates cannot corrupt the set.
func (r *UserRepository) mutateSet(ctx context.Context, userID, op, attr, member string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		UpdateExpression: aws.String(fmt.Sprintf("%s %s :member", op, attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{member}},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if stderrors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("user")
		}
		return pkgerrors.NewDatabaseError(fmt.Sprintf("%s %s", op, attr), err)
	}
	return nil
}

func (r *UserRepository) markerItem(pk, userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: pk},
		"SK":         &types.AttributeValueMemberS{Value: skMarker},
		"EntityType": &types.AttributeValueMemberS{Value: "UNIQUE_MARKER"},
		"UserID":     &types.AttributeValueMemberS{Value: userID},
	}
}

func (r *UserRepository) markerKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: skMarker},
	}
}

// cancelledAt reports whether a transaction failed on the conditional
// check of the item at the given index
func cancelledAt(err error, idx int) bool {
	var txErr *types.TransactionCanceledException
	if !stderrors.As(err, &txErr) {
		return false
	}
	if idx >= len(txErr.CancellationReasons) {
		return false
	}
	reason := txErr.CancellationReasons[idx]
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}
