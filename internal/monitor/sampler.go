package monitor

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/metrics"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/poller"
)

const DefaultStatusInterval = 5 * time.Second

type StatusSource interface {
	SystemStatus(ctx context.Context) (*domain.Snapshot, error)
}

// Sampler owns the last-known snapshot. A failed poll clears it; there is no
// stale-data retention.
type Sampler struct {
	src      StatusSource
	interval time.Duration

	mu   sync.RWMutex
	snap *domain.Snapshot
	subs []func(*domain.Snapshot)
	task *poller.Task
}

func NewSampler(src StatusSource, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &Sampler{src: src, interval: interval}
}

// Subscribe registers fn to be called after every applied poll, with nil when
// the poll failed. Register before Start.
func (s *Sampler) Subscribe(fn func(*domain.Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		return
	}
	s.task = poller.Start(ctx, s.interval, s.tick)
}

// Stop cancels the timer and any in-flight request. Once it returns no further
// snapshot will be applied.
func (s *Sampler) Stop() {
	s.mu.Lock()
	t := s.task
	s.task = nil
	s.mu.Unlock()
	t.Stop()
}

// Latest returns the current snapshot, or false when there is no data.
func (s *Sampler) Latest() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return domain.Snapshot{}, false
	}
	return *s.snap, true
}

func (s *Sampler) tick(ctx context.Context) {
	snap, err := s.src.SystemStatus(ctx)

	s.mu.Lock()
	if ctx.Err() != nil {
		// stopped while the request was in flight
		s.mu.Unlock()
		return
	}
	if err != nil {
		snap = nil
	}
	s.snap = snap
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	metrics.PollTotal.WithLabelValues("status", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("view", "status").Msg("failed to fetch system status")
	}
	for _, fn := range subs {
		fn(snap)
	}
}
