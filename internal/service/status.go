package service

import (
	"math"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type StatusService struct {
	store      Store
	area       string
	staleAfter time.Duration
	now        func() time.Time
}

// Snapshot builds the street status from the newest reading of each meter.
// Instantaneous power per role counts only meters still reporting.
func (s *StatusService) Snapshot() (*domain.Snapshot, error) {
	latest, err := s.store.LatestPerMeter()
	if err != nil {
		return nil, err
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	totals, err := s.store.DayTotals(midnight)
	if err != nil {
		return nil, err
	}

	sort.Slice(latest, func(i, j int) bool { return latest[i].MeterID < latest[j].MeterID })

	snap := &domain.Snapshot{MeterStatus: make([]domain.MeterStatus, 0, len(latest)), Area: s.area}
	power := map[domain.MeterRole]float64{}
	seen := map[domain.MeterRole]bool{}
	for _, rd := range latest {
		state := domain.MeterOffline
		if now.Sub(rd.Timestamp) <= s.staleAfter {
			state = domain.MeterOnline
			power[rd.Role] += rd.PowerW
			seen[rd.Role] = true
		}
		snap.MeterStatus = append(snap.MeterStatus, domain.MeterStatus{MeterID: rd.MeterID, Status: state})
		if snap.Area == "" {
			snap.Area = rd.Area
		}
	}

	pick := func(role domain.MeterRole) *float64 {
		if !seen[role] {
			return nil
		}
		return domain.Float(power[role])
	}
	snap.StreetInputPower = pick(domain.RoleStreetInput)
	snap.ToNextPower = pick(domain.RoleToNext)
	snap.HouseTotalPower = pick(domain.RoleHouse)

	total := func(role domain.MeterRole) *float64 {
		v, ok := totals[role]
		if !ok {
			return nil
		}
		return domain.Float(v)
	}
	snap.StreetInputTotalDay = total(domain.RoleStreetInput)
	snap.ToNextTotalDay = total(domain.RoleToNext)
	snap.HouseTotalTotalDay = total(domain.RoleHouse)
	return snap, nil
}

// Health summarises meter availability for the health panel.
func (s *StatusService) Health() (*domain.HealthSummary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	online := 0
	for _, m := range snap.MeterStatus {
		if m.Status == domain.MeterOnline {
			online++
		}
	}
	accuracy := 0.0
	if n := len(snap.MeterStatus); n > 0 {
		accuracy = math.Round(float64(online)/float64(n)*1000) / 10
	}
	return &domain.HealthSummary{
		Network:      "Online",
		Accuracy:     accuracy,
		ActiveMeters: online,
		LastSync:     s.now().Format("15:04:05"),
	}, nil
}
