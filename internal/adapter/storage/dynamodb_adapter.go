package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rl1809/storefront/internal/core/domain"
)

// DynamoAPI is the subset of the DynamoDB client used by the snapshot store.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type dynamoCartRecord struct {
	CartKey   string    `dynamodbav:"cart_key"`
	Items     string    `dynamodbav:"items"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// DynamoSnapshotStore keeps one item per cart key; the lines are stored as a
// JSON string so prices keep their exact decimal form.
type DynamoSnapshotStore struct {
	client DynamoAPI
	table  string
	key    string
}

func NewDynamoSnapshotStore(client DynamoAPI, table, cartKey string) *DynamoSnapshotStore {
	return &DynamoSnapshotStore{client: client, table: table, key: cartKey}
}

func (d *DynamoSnapshotStore) SaveCart(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	item, err := attributevalue.MarshalMap(dynamoCartRecord{
		CartKey:   d.key,
		Items:     string(data),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal cart record: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

func (d *DynamoSnapshotStore) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"cart_key": &types.AttributeValueMemberS{Value: d.key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if result.Item == nil {
		return []domain.LineItem{}, nil
	}

	var record dynamoCartRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshal cart record: %w", err)
	}

	items := []domain.LineItem{}
	if record.Items == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(record.Items), &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}
