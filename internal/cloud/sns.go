package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

type snsPublisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient fans alert emails out to the subscribers of one topic.
type SNSClient struct {
	svc      snsPublisher
	topicArn string
}

func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}, nil
}

// Notify publishes one message to the topic.
func (c *SNSClient) Notify(ctx context.Context, subject, message string) error {
	out, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Info().Str("message_id", aws.ToString(out.MessageId)).Str("subject", subject).Msg("alert published")
	return nil
}
