package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSNotify(t *testing.T) {
	f := &fakeSNS{}
	c := &SNSClient{svc: f, topicArn: "arn:aws:sns:us-east-1:1:alerts"}

	require.NoError(t, c.Notify(context.Background(), "subj", "body"))
	assert.Equal(t, "arn:aws:sns:us-east-1:1:alerts", aws.ToString(f.in.TopicArn))
	assert.Equal(t, "subj", aws.ToString(f.in.Subject))
	assert.Equal(t, "body", aws.ToString(f.in.Message))

	f.err = errors.New("throttled")
	err := c.Notify(context.Background(), "subj", "body")
	assert.ErrorIs(t, err, f.err)
}

type fakeDynamo struct {
	put   *dynamodb.PutItemInput
	query *dynamodb.QueryInput
	items []map[string]types.AttributeValue
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.put = in
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.query = in
	return &dynamodb.QueryOutput{Items: f.items}, nil
}

func TestDynamoRecordAndQuery(t *testing.T) {
	f := &fakeDynamo{}
	c := &DynamoDBClient{svc: f, table: "Alerts"}
	sent := time.Unix(1700000000, 0)

	rec := domain.AlertRecord{ID: "a-1", Kind: domain.AlertFault, Area: "Elm Street", SentAt: sent}
	require.NoError(t, c.RecordAlert(context.Background(), rec))
	assert.Equal(t, "Alerts", aws.ToString(f.put.TableName))

	var stored alertItem
	require.NoError(t, attributevalue.UnmarshalMap(f.put.Item, &stored))
	assert.Equal(t, "fault", stored.Type)
	assert.Equal(t, int64(1700000000), stored.Timestamp)

	got, err := c.RecentAlerts(context.Background(), "Elm Street", 10)
	require.NoError(t, err)
	assert.False(t, aws.ToBool(f.query.ScanIndexForward))
	assert.Equal(t, []domain.AlertRecord{rec}, got)
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, err := io.ReadAll(in.Body)
	f.body = b
	return &s3.PutObjectOutput{}, err
}

func TestArchiveLogs(t *testing.T) {
	f := &fakeS3{}
	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	c := &S3Client{svc: f, bucket: "grid-archive", now: func() time.Time { return at }}

	entries := []domain.LogEntry{{ID: "x", Date: at, PowerLoss: 4, TheftAlert: domain.AlertNoTheft}}
	key, err := c.ArchiveLogs(context.Background(), domain.Daily, entries)
	require.NoError(t, err)

	assert.Equal(t, "logs/daily/20250601T083000Z.json", key)
	assert.Equal(t, key, aws.ToString(f.in.Key))
	assert.Equal(t, "1", f.in.Metadata["entries"])

	var back []domain.LogEntry
	require.NoError(t, json.Unmarshal(f.body, &back))
	assert.Equal(t, "x", back[0].ID)
}
