// Command cloudcheck exercises the AWS adapters with the configured
// credentials: one SNS alert, one audit row read back, one log archive.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/cloud"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

const area = "cloudcheck"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	region := config.AWSRegion()

	if arn := config.SNSTopicArn(); arn != "" {
		sns, err := cloud.NewSNSClient(ctx, region, arn)
		if err != nil {
			log.Fatal().Err(err).Msg("sns init failed")
		}
		err = sns.Notify(ctx, "Test Alert from Grid Theft Monitor",
			"This is a test alert to verify SNS configuration.\n\nTimestamp: "+time.Now().Format(time.RFC3339))
		if err != nil {
			log.Fatal().Err(err).Msg("sns check failed")
		}
		fmt.Println("✓ SNS publish")
	} else {
		fmt.Println("- SNS skipped: AWS_SNS_TOPIC_ARN unset")
	}

	db, err := cloud.NewDynamoDBClient(ctx, region, config.AlertsTable())
	if err != nil {
		log.Fatal().Err(err).Msg("dynamodb init failed")
	}
	rec := domain.AlertRecord{ID: uuid.NewString(), Kind: domain.AlertInvestigate, Area: area, SentAt: time.Now()}
	if err := db.RecordAlert(ctx, rec); err != nil {
		log.Fatal().Err(err).Msg("dynamodb write failed")
	}
	recent, err := db.RecentAlerts(ctx, area, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("dynamodb query failed")
	}
	fmt.Printf("✓ DynamoDB %s: wrote %s, read back %d\n", config.AlertsTable(), rec.ID, len(recent))

	s3c, err := cloud.NewS3Client(ctx, region, config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("s3 init failed")
	}
	key, err := s3c.ArchiveLogs(ctx, domain.Daily, []domain.LogEntry{
		{ID: uuid.NewString(), Date: time.Now(), PowerLoss: 0, TheftAlert: domain.AlertNoTheft},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("s3 archive failed")
	}
	fmt.Printf("✓ S3 s3://%s/%s\n", config.S3Bucket(), key)
}
