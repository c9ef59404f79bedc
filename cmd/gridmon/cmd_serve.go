package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/alert"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/monitor"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/notify"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/retention"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/server"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/telemetry"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient()
	sampler := monitor.NewSampler(client, config.StatusInterval())
	mon := monitor.NewMonitor(sampler)
	health := monitor.NewHealthSampler(client, config.HealthInterval())
	daily := retention.New(client, domain.Daily, config.DailyLogsInterval())
	monthly := retention.New(client, domain.Monthly, config.MonthlyLogsInterval())

	machine := alert.NewMachine(notify.NewDispatcher(client), mon)
	machine.OnAcknowledge = func() { log.Info().Msg("alert acknowledged") }

	if url := config.InfluxURL(); url != "" {
		rec := telemetry.Dial(url, config.InfluxToken(), config.InfluxOrg(), config.InfluxBucket())
		defer rec.Close()
		mon.Subscribe(rec.Observe)
		log.Info().Str("url", url).Str("bucket", config.InfluxBucket()).Msg("recording telemetry")
	}

	console := server.New(server.Console{
		Monitor: mon,
		Health:  health,
		Alerts:  machine,
		Logs:    map[domain.Granularity]*retention.View{domain.Daily: daily, domain.Monthly: monthly},
	})
	httpSrv := &http.Server{Addr: config.ConsoleAddr(), Handler: console, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sampler.Start(gctx)
		health.Start(gctx)
		daily.Start(gctx)
		monthly.Start(gctx)
		<-gctx.Done()

		sampler.Stop()
		health.Stop()
		daily.Stop()
		monthly.Stop()
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Str("api", config.APIURL()).Msg("console listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		console.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info().Msg("console stopped")
	return err
}
