package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

const (
	houses = 4
	rounds = 100
	// leak is the share of street input drawn off by an unmetered tap.
	leak = 0.12
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker()).SetClientID("grid-simulator")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	area := config.AreaLabel()
	if area == "" {
		area = "Sector 7"
	}
	topic := config.MQTTTopic()

	for i := 0; i < rounds; i++ {
		now := time.Now()
		input := 4000 + rand.Float64()*500
		next := input * 0.3

		// the tap only runs in the second half of the run
		stolen := 0.0
		if i >= rounds/2 {
			stolen = input * leak
		}
		perHouse := (input - next - stolen) / houses

		readings := []domain.Reading{
			{MeterID: "street-in", Role: domain.RoleStreetInput, PowerW: input},
			{MeterID: "to-next", Role: domain.RoleToNext, PowerW: next},
		}
		for h := 1; h <= houses; h++ {
			readings = append(readings, domain.Reading{
				MeterID: fmt.Sprintf("house-%d", h),
				Role:    domain.RoleHouse,
				PowerW:  perHouse,
			})
		}

		for _, r := range readings {
			r.Area = area
			r.Timestamp = now
			payload, _ := json.Marshal(r)
			token := client.Publish(topic, 1, false, payload)
			token.Wait()
			if err := token.Error(); err != nil {
				log.Error().Err(err).Str("meter", r.MeterID).Msg("publish failed")
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
