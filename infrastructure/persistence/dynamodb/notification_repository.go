package dynamodb

import (
	"context"
	"fmt"
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

const entityTypeNotification = "NOTIFICATION"

// batchWriteLimit is the BatchWriteItem cap per call
const batchWriteLimit = 25

// NotificationRepository implements ports.NotificationRepository on
// DynamoDB. Notifications for a recipient share one partition with a
// time-ordered sort key, so listing newest-first is a single query.
type NotificationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.NotificationRepository {
	return &NotificationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// notificationItem represents the DynamoDB item structure for a notification
type notificationItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	NotifID    string `dynamodbav:"NotifID"`
	Type       string `dynamodbav:"Type"`
	FromID     string `dynamodbav:"FromID"`
	ToID       string `dynamodbav:"ToID"`
	IsRead     bool   `dynamodbav:"IsRead"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func notificationPK(toID string) string { return fmt.Sprintf("NOTIFY#%s", toID) }

// notificationSK orders a recipient's partition by creation time; the ID
// suffix keeps keys unique under same-instant writes. keyTime's fixed-width
// nanoseconds keep lexicographic order chronological.
func notificationSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("%s#%s", keyTime(createdAt), id)
}

// Create inserts one unread notification
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	item := notificationItem{
		PK:         notificationPK(n.ToID),
		SK:         notificationSK(n.CreatedAt, n.ID),
		EntityType: entityTypeNotification,
		NotifID:    n.ID,
		Type:       string(n.Type),
		FromID:     n.FromID,
		ToID:       n.ToID,
		IsRead:     n.Read,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal notification", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("create notification", err)
	}
	return nil
}

// ListByRecipient returns a recipient's notifications newest-first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string) ([]*entities.Notification, error) {
	items, err := r.queryPartition(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]*entities.Notification, 0, len(items))
	for _, item := range items {
		createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal notification", err)
		}
		list = append(list, &entities.Notification{
			ID:        item.NotifID,
			Type:      entities.NotificationType(item.Type),
			FromID:    item.FromID,
			ToID:      item.ToID,
			Read:      item.IsRead,
			CreatedAt: createdAt,
		})
	}
	return list, nil
}

// MarkAllRead flips every notification in the recipient's partition to
// read. Bulk update-many: one update per item, partition re-queried for
// keys.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	items, err := r.queryPartition(ctx, userID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.IsRead {
			continue
		}
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
			UpdateExpression: aws.String("SET IsRead = :read"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":read": &types.AttributeValueMemberBOOL{Value: true},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("mark notifications read", err)
		}
	}
	return nil
}

// DeleteByRecipient removes every notification addressed to the recipient
func (r *NotificationRepository) DeleteByRecipient(ctx context.Context, userID string) error {
	items, err := r.queryPartition(ctx, userID)
	if err != nil {
		return err
	}

	for start := 0; start < len(items); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(items) {
			end = len(items)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: item.PK},
						"SK": &types.AttributeValueMemberS{Value: item.SK},
					},
				},
			})
		}

		pending := map[string][]types.WriteRequest{r.tableName: writes}
		for len(pending) > 0 {
			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("delete notifications", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func (r *NotificationRepository) queryPartition(ctx context.Context, userID string) ([]notificationItem, error) {
	var items []notificationItem
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: notificationPK(userID)},
			},
			ScanIndexForward:  aws.Bool(false), // newest first
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query notifications", err)
		}
		for _, raw := range out.Items {
			var item notificationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal notification", err)
			}
			items = append(items, item)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}
