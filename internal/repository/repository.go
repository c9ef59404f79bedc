package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) InsertReading(rd *domain.Reading) error {
	_, err := r.db.NamedExec(`INSERT INTO readings(meter_id, role, area, power_w, timestamp)
		VALUES (:meter_id, :role, :area, :power_w, :timestamp)`, rd)
	return err
}

// LatestPerMeter returns the newest reading of every meter that has reported.
func (r *Repos) LatestPerMeter() ([]domain.Reading, error) {
	var out []domain.Reading
	err := r.db.Select(&out, `SELECT DISTINCT ON (meter_id) id, meter_id, role, area, power_w, timestamp
		FROM readings ORDER BY meter_id, timestamp DESC`)
	return out, err
}

// DayTotals sums readings per role since the given instant.
func (r *Repos) DayTotals(since time.Time) (map[domain.MeterRole]float64, error) {
	var rows []struct {
		Role  domain.MeterRole `db:"role"`
		Total float64          `db:"total"`
	}
	err := r.db.Select(&rows, `SELECT role, COALESCE(SUM(power_w), 0) AS total
		FROM readings WHERE timestamp >= $1 GROUP BY role`, since)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.MeterRole]float64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Total
	}
	return out, nil
}

func logTable(g domain.Granularity) (string, error) {
	switch g {
	case domain.Daily:
		return "daily_logs", nil
	case domain.Monthly:
		return "monthly_logs", nil
	}
	return "", fmt.Errorf("unknown granularity %q", g)
}

// ListLogs returns entries newest first.
func (r *Repos) ListLogs(g domain.Granularity) ([]domain.LogEntry, error) {
	table, err := logTable(g)
	if err != nil {
		return nil, err
	}
	out := []domain.LogEntry{}
	err = r.db.Select(&out, `SELECT id, date, power_loss, theft_alert FROM `+table+` ORDER BY date DESC`)
	return out, err
}

func (r *Repos) InsertLog(g domain.Granularity, e *domain.LogEntry) error {
	table, err := logTable(g)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExec(`INSERT INTO `+table+`(id, date, power_loss, theft_alert)
		VALUES (:id, :date, :power_loss, :theft_alert)`, e)
	return err
}

// DeleteLog removes one entry and reports whether it existed.
func (r *Repos) DeleteLog(g domain.Granularity, id string) (bool, error) {
	table, err := logTable(g)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(`DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repos) DeleteLogs(g domain.Granularity) error {
	table, err := logTable(g)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`DELETE FROM ` + table)
	return err
}
