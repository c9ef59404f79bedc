package service

import (
	"context"
	"time"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

// Store is what the services need from the repository.
type Store interface {
	InsertReading(rd *domain.Reading) error
	LatestPerMeter() ([]domain.Reading, error)
	DayTotals(since time.Time) (map[domain.MeterRole]float64, error)
	ListLogs(g domain.Granularity) ([]domain.LogEntry, error)
	InsertLog(g domain.Granularity, e *domain.LogEntry) error
	DeleteLog(g domain.Granularity, id string) (bool, error)
	DeleteLogs(g domain.Granularity) error
}

// Notifier delivers an alert email. SNS in the cloud, the log otherwise.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

type AlertAuditor interface {
	RecordAlert(ctx context.Context, rec domain.AlertRecord) error
}

type LogArchiver interface {
	ArchiveLogs(ctx context.Context, g domain.Granularity, entries []domain.LogEntry) (string, error)
}

type Options struct {
	Area       string
	StaleAfter time.Duration
	Notifier   Notifier
	Auditor    AlertAuditor
	Archiver   LogArchiver
	Now        func() time.Time
}

type Services struct {
	Store    Store
	Readings *ReadingService
	Status   *StatusService
	Email    *EmailService
	Logs     *LogService
	Rollups  *RollupService
}

func New(store Store, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 30 * time.Second
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	status := &StatusService{store: store, area: opts.Area, staleAfter: opts.StaleAfter, now: opts.Now}
	return &Services{
		Store:    store,
		Readings: &ReadingService{store: store},
		Status:   status,
		Email:    &EmailService{notifier: opts.Notifier, auditor: opts.Auditor, area: opts.Area, now: opts.Now},
		Logs:     &LogService{store: store, archiver: opts.Archiver},
		Rollups:  &RollupService{store: store, status: status, now: opts.Now},
	}
}
