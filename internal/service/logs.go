package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

var ErrLogNotFound = errors.New("log entry not found")

type LogService struct {
	store    Store
	archiver LogArchiver
}

func (s *LogService) List(g domain.Granularity) ([]domain.LogEntry, error) {
	return s.store.ListLogs(g)
}

func (s *LogService) Delete(g domain.Granularity, id string) error {
	found, err := s.store.DeleteLog(g, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrLogNotFound
	}
	return nil
}

// Purge removes every entry of g. With an archiver configured the entries are
// archived first and a failed archive leaves the table untouched.
func (s *LogService) Purge(ctx context.Context, g domain.Granularity) error {
	if s.archiver != nil {
		entries, err := s.store.ListLogs(g)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			key, err := s.archiver.ArchiveLogs(ctx, g, entries)
			if err != nil {
				return fmt.Errorf("archive %s logs: %w", g, err)
			}
			log.Info().Str("granularity", string(g)).Str("key", key).Int("entries", len(entries)).Msg("logs archived")
		}
	}
	return s.store.DeleteLogs(g)
}
