package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/cloud"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/database"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	httpHandlers "github.com/ANIKETSHETTY47/grid-theft-monitor/internal/http"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/poller"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/repository"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	opts := service.Options{Area: config.AreaLabel(), StaleAfter: config.MeterStaleAfter()}
	if config.UseCloudServices() {
		wireCloud(ctx, &opts)
	}
	svcs := service.New(repository.New(db), opts)

	rollups := []*poller.Task{
		rollup(ctx, svcs, domain.Daily, config.DailyRollupInterval()),
		rollup(ctx, svcs, domain.Monthly, config.MonthlyRollupInterval()),
	}
	defer func() {
		for _, t := range rollups {
			t.Stop()
		}
	}()

	app := fiber.New()
	httpHandlers.Register(app, svcs)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Bool("cloud", config.UseCloudServices()).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("server exit")
	}
}

func wireCloud(ctx context.Context, opts *service.Options) {
	region := config.AWSRegion()
	if arn := config.SNSTopicArn(); arn != "" {
		n, err := cloud.NewSNSClient(ctx, region, arn)
		if err != nil {
			log.Fatal().Err(err).Msg("sns init failed")
		}
		opts.Notifier = n
	} else {
		log.Warn().Msg("AWS_SNS_TOPIC_ARN unset; alerts go to the log")
	}

	audit, err := cloud.NewDynamoDBClient(ctx, region, config.AlertsTable())
	if err != nil {
		log.Fatal().Err(err).Msg("dynamodb init failed")
	}
	opts.Auditor = audit

	archive, err := cloud.NewS3Client(ctx, region, config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("s3 init failed")
	}
	opts.Archiver = archive
}

func rollup(ctx context.Context, svcs *service.Services, g domain.Granularity, every time.Duration) *poller.Task {
	return poller.Start(ctx, every, func(ctx context.Context) {
		if _, err := svcs.Rollups.Run(ctx, g); err != nil {
			log.Error().Err(err).Str("granularity", string(g)).Msg("rollup failed")
		}
	})
}
