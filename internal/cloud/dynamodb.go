package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBClient keeps the audit trail of dispatched alerts.
type DynamoDBClient struct {
	svc   dynamoAPI
	table string
}

func NewDynamoDBClient(ctx context.Context, region, table string) (*DynamoDBClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &DynamoDBClient{svc: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// alertItem is the stored shape; the table is keyed by area with a timestamp
// sort key.
type alertItem struct {
	AlertID   string `dynamodbav:"alertId"`
	Area      string `dynamodbav:"area"`
	Timestamp int64  `dynamodbav:"timestamp"`
	Type      string `dynamodbav:"type"`
}

func (c *DynamoDBClient) RecordAlert(ctx context.Context, rec domain.AlertRecord) error {
	item, err := attributevalue.MarshalMap(alertItem{
		AlertID:   rec.ID,
		Area:      rec.Area,
		Timestamp: rec.SentAt.Unix(),
		Type:      string(rec.Kind),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// RecentAlerts returns up to limit alerts for an area, newest first.
func (c *DynamoDBClient) RecentAlerts(ctx context.Context, area string, limit int32) ([]domain.AlertRecord, error) {
	out, err := c.svc.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("area = :area"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":area": &types.AttributeValueMemberS{Value: area},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	var items []alertItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}
	recs := make([]domain.AlertRecord, len(items))
	for i, it := range items {
		recs[i] = domain.AlertRecord{
			ID:     it.AlertID,
			Kind:   domain.AlertKind(it.Type),
			Area:   it.Area,
			SentAt: time.Unix(it.Timestamp, 0),
		}
	}
	return recs, nil
}
