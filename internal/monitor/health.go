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

const DefaultHealthInterval = 10 * time.Second

type HealthSource interface {
	SystemHealth(ctx context.Context) (*domain.HealthSummary, error)
}

// HealthSampler polls the health summary. Unlike the status sampler it keeps
// the previous values on failure and only flips the network field to Offline.
type HealthSampler struct {
	src      HealthSource
	interval time.Duration

	mu      sync.RWMutex
	summary domain.HealthSummary
	subs    []func(domain.HealthSummary)
	task    *poller.Task
}

func NewHealthSampler(src HealthSource, interval time.Duration) *HealthSampler {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &HealthSampler{src: src, interval: interval, summary: domain.InitialHealth()}
}

func (h *HealthSampler) Subscribe(fn func(domain.HealthSummary)) {
	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

func (h *HealthSampler) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.task != nil {
		return
	}
	h.task = poller.Start(ctx, h.interval, h.tick)
}

func (h *HealthSampler) Stop() {
	h.mu.Lock()
	t := h.task
	h.task = nil
	h.mu.Unlock()
	t.Stop()
}

func (h *HealthSampler) Summary() domain.HealthSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.summary
}

func (h *HealthSampler) tick(ctx context.Context) {
	got, err := h.src.SystemHealth(ctx)

	h.mu.Lock()
	if ctx.Err() != nil {
		h.mu.Unlock()
		return
	}
	if err != nil {
		h.summary.Network = domain.NetworkOffline
	} else {
		h.summary = *got
	}
	summary := h.summary
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	metrics.PollTotal.WithLabelValues("health", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("view", "health").Msg("failed to fetch system health")
	}
	for _, fn := range subs {
		fn(summary)
	}
}
