package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type s3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Client archives log tables before they are purged.
type S3Client struct {
	svc    s3Putter
	bucket string
	now    func() time.Time
}

func NewS3Client(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &S3Client{svc: s3.NewFromConfig(cfg), bucket: bucket, now: time.Now}, nil
}

// ArchiveKey is where a purge of g taken at t is stored.
func ArchiveKey(g domain.Granularity, t time.Time) string {
	return fmt.Sprintf("logs/%s/%s.json", g, t.UTC().Format("20060102T150405Z"))
}

// ArchiveLogs writes entries as one JSON document and returns its key.
func (c *S3Client) ArchiveLogs(ctx context.Context, g domain.Granularity, entries []domain.LogEntry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode logs: %w", err)
	}
	now := c.now()
	key := ArchiveKey(g, now)
	_, err = c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"archived-at": now.Format(time.RFC3339),
			"entries":     fmt.Sprintf("%d", len(entries)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}
