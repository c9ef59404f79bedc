package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type ReadingService struct {
	store Store
}

// FromMQTT stores one reading published on the readings topic. A missing
// timestamp is taken as the time of receipt.
func (s *ReadingService) FromMQTT(topic string, payload []byte) error {
	var rd domain.Reading
	if err := json.Unmarshal(payload, &rd); err != nil {
		return fmt.Errorf("decode reading from %s: %w", topic, err)
	}
	if rd.MeterID == "" {
		return fmt.Errorf("reading from %s has no meter_id", topic)
	}
	if !rd.Role.Valid() {
		return fmt.Errorf("reading from %s has unknown role %q", topic, rd.Role)
	}
	if rd.Timestamp.IsZero() {
		rd.Timestamp = time.Now()
	}
	return s.store.InsertReading(&rd)
}
