package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/database"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/repository"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(repository.New(db), service.Options{})

	opts := mqtt.NewClientOptions().
		AddBroker(config.MQTTBroker()).
		SetClientID("grid-ingestor").
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := svcs.Readings.FromMQTT(msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Msg("ingest failed")
		}
	}

	topic := config.MQTTTopic()
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info().Str("topic", topic).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
}
