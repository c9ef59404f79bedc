package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/classifier"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type RollupService struct {
	store  Store
	status *StatusService
	now    func() time.Time
}

// Label folds a classification into the stored alert label. A dark or
// faulted street outranks a theft verdict.
func Label(c domain.Classification) domain.TheftAlert {
	switch {
	case c.Health == domain.PowerOff:
		return domain.AlertLightCutOff
	case c.Health == domain.SystemFault:
		return domain.AlertSystemFault
	case c.Theft == domain.TheftDetected:
		return domain.AlertTheftDetected
	}
	return domain.AlertNoTheft
}

// Run classifies the current street and appends one entry to the g log.
func (s *RollupService) Run(ctx context.Context, g domain.Granularity) (*domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.status.Snapshot()
	if err != nil {
		return nil, err
	}
	c := classifier.Classify(*snap)
	entry := &domain.LogEntry{
		ID:         uuid.NewString(),
		Date:       s.now(),
		PowerLoss:  c.PowerLoss,
		TheftAlert: Label(c),
	}
	if err := s.store.InsertLog(g, entry); err != nil {
		return nil, err
	}
	log.Info().Str("granularity", string(g)).Str("label", string(entry.TheftAlert)).Float64("power_loss", entry.PowerLoss).Msg("rollup written")
	return entry, nil
}
